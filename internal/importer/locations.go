package importer

import (
	"context"
	"errors"
	"fmt"

	"puzzled_pint_map/internal/geocode"
	"puzzled_pint_map/internal/loader"
	"puzzled_pint_map/internal/logger"
	"puzzled_pint_map/internal/models"
	"puzzled_pint_map/internal/storage"
)

// LocationReport summarises one location import.
type LocationReport struct {
	EventID      int      `json:"event_id"`
	Locations    int      `json:"locations"`
	Remote       int      `json:"remote"`
	Skipped      int      `json:"skipped"`
	LinkedCities int      `json:"linked_cities"`
	Unmatched    []string `json:"unmatched,omitempty"`
}

// LocationImporter turns the legacy feed of an event into
// locations_<id>.geojson and links the event into cities.json.
type LocationImporter struct {
	feed          Feed
	geo           geocode.Geocoder
	store         storage.Store
	events        []models.Event
	includeRemote bool
	log           *logger.Logger
}

func NewLocationImporter(feed Feed, geo geocode.Geocoder, store storage.Store, events []models.Event, includeRemote bool, log *logger.Logger) *LocationImporter {
	return &LocationImporter{
		feed:          feed,
		geo:           geo,
		store:         store,
		events:        events,
		includeRemote: includeRemote,
		log:           log.Named("location_import"),
	}
}

func (im *LocationImporter) Import(ctx context.Context, eventID int) (LocationReport, error) {
	rep := LocationReport{EventID: eventID}
	if eventID <= 0 {
		return rep, fmt.Errorf("event id must be positive, got %d", eventID)
	}
	if im.geo == nil {
		return rep, ErrNoGeocoder
	}

	raw, err := im.feed.Fetch(ctx, eventID)
	if err != nil {
		return rep, err
	}
	entries, err := ParseLegacyLocations(raw, im.log)
	if err != nil {
		return rep, fmt.Errorf("event %d: %w", eventID, err)
	}

	locs := make([]models.Location, 0, len(entries))
	for _, e := range entries {
		loc, ok, err := im.locate(ctx, e)
		if err != nil {
			return rep, err
		}
		if !ok {
			rep.Skipped++
			continue
		}
		if e.Remote() {
			rep.Remote++
		}
		locs = append(locs, loc)
	}
	rep.Locations = len(locs)

	b, err := loader.EncodeLocations(locs)
	if err != nil {
		return rep, fmt.Errorf("encode locations: %w", err)
	}
	if err := im.store.Write(ctx, loader.LocationsFile(eventID), b); err != nil {
		return rep, fmt.Errorf("write locations: %w", err)
	}
	im.log.Infow("locations_written", "event_id", eventID, "locations", rep.Locations, "remote", rep.Remote, "skipped", rep.Skipped)

	rep.LinkedCities, rep.Unmatched, err = im.link(ctx, eventID, entries)
	if err != nil {
		return rep, err
	}
	return rep, nil
}

// locate geocodes one entry. ok=false means the entry is left off the map.
func (im *LocationImporter) locate(ctx context.Context, e LegacyEntry) (models.Location, bool, error) {
	loc := models.Location{
		Name:      e.Name,
		Address:   e.Address,
		Bar:       e.Bar,
		BarURL:    e.BarURL,
		StartTime: e.StartTime,
		StopTime:  e.StopTime,
		Notes:     e.Notes,
	}

	var queries []string
	if e.Remote() {
		if !im.includeRemote {
			im.log.Warnw("location_without_address", "name", e.Name)
			return loc, false, nil
		}
		queries = []string{e.City}
	} else {
		queries = []string{e.Address, e.City}
	}

	p, err := im.resolve(ctx, queries...)
	if errors.Is(err, geocode.ErrNotFound) {
		im.log.Warnw("location_not_geocoded", "name", e.Name, "queries", queries)
		return loc, false, nil
	}
	if err != nil {
		return loc, false, fmt.Errorf("geocode %q: %w", e.Name, err)
	}

	loc.Latitude, loc.Longitude = p.Latitude, p.Longitude
	loc.SuccessfulGeocode = !e.Remote() && geocode.LooksPrecise(p.Address)
	return loc, true, nil
}

// resolve tries each query in turn until one is found.
func (im *LocationImporter) resolve(ctx context.Context, queries ...string) (geocode.Point, error) {
	for i, q := range queries {
		if q == "" {
			continue
		}
		p, err := im.geo.Geocode(ctx, q)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, geocode.ErrNotFound) {
			return geocode.Point{}, err
		}
		if i < len(queries)-1 {
			im.log.Warnw("geocode_fallback", "query", q)
		}
	}
	return geocode.Point{}, geocode.ErrNotFound
}

func (im *LocationImporter) link(ctx context.Context, eventID int, entries []LegacyEntry) (int, []string, error) {
	b, err := im.store.Read(ctx, loader.CitiesFile)
	if errors.Is(err, storage.ErrNotFound) {
		im.log.Warnw("cities_missing", "event_id", eventID)
		return 0, nil, nil
	}
	if err != nil {
		return 0, nil, fmt.Errorf("read cities: %w", err)
	}
	cities, err := loader.DecodeCities(b)
	if err != nil {
		return 0, nil, err
	}

	linked, unmatched := LinkEvent(cities, eventID, entries)
	if latest, ok := models.LatestEvent(im.events); ok {
		ApplyStatus(cities, latest.ID)
	}
	for _, name := range unmatched {
		im.log.Warnw("city_not_in_list", "event_id", eventID, "city", name)
	}

	out, err := loader.EncodeCities(cities)
	if err != nil {
		return 0, nil, fmt.Errorf("encode cities: %w", err)
	}
	if err := im.store.Write(ctx, loader.CitiesFile, out); err != nil {
		return 0, nil, fmt.Errorf("write cities: %w", err)
	}
	return linked, unmatched, nil
}
