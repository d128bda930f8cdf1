// Package loader fetches the map's data files and decodes them into
// location and city records.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"puzzled_pint_map/internal/models"
	"puzzled_pint_map/internal/storage"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CitiesFile is the name of the city list.
const CitiesFile = "cities.json"

// LocationsFile returns the data file holding one event's locations.
func LocationsFile(eventID int) string {
	return fmt.Sprintf("locations_%d.geojson", eventID)
}

var ErrNotPoint = errors.New("feature geometry is not a point")

// Loader reads data files through a storage.Store.
type Loader struct {
	store storage.Store
}

func New(store storage.Store) *Loader {
	return &Loader{store: store}
}

// LoadCities reads and decodes cities.json.
func (l *Loader) LoadCities(ctx context.Context) ([]models.City, error) {
	b, err := l.store.Read(ctx, CitiesFile)
	if err != nil {
		return nil, err
	}
	return DecodeCities(b)
}

// LoadLocations reads and decodes the locations of one event.
func (l *Loader) LoadLocations(ctx context.Context, eventID int) ([]models.Location, error) {
	name := LocationsFile(eventID)
	b, err := l.store.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	locs, err := DecodeLocations(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return locs, nil
}

// DecodeCities parses the cities.json array.
func DecodeCities(b []byte) ([]models.City, error) {
	var cities []models.City
	if err := json.Unmarshal(b, &cities); err != nil {
		return nil, fmt.Errorf("decode %s: %w", CitiesFile, err)
	}
	for i := range cities {
		if cities[i].Status == "" {
			cities[i].Status = models.CityDefunct
		}
	}
	return cities, nil
}

// DecodeLocations parses a FeatureCollection of location points.
func DecodeLocations(b []byte) ([]models.Location, error) {
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	out := make([]models.Location, 0, len(fc.Features))
	for i, f := range fc.Features {
		loc, err := locationFromFeature(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out = append(out, loc)
	}
	return out, nil
}

func locationFromFeature(f *geojson.Feature) (models.Location, error) {
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return models.Location{}, ErrNotPoint
	}
	p := f.Properties
	return models.Location{
		Name:              stringProp(p, "name"),
		Address:           stringProp(p, "address"),
		Bar:               stringProp(p, "bar"),
		BarURL:            stringProp(p, "bar_url"),
		StartTime:         stringProp(p, "start_time"),
		StopTime:          stringProp(p, "stop_time"),
		Notes:             stringProp(p, "notes"),
		SuccessfulGeocode: boolProp(p, "successful_geocode"),
		Longitude:         pt.Lon(),
		Latitude:          pt.Lat(),
	}, nil
}

// stringProp treats missing keys, JSON null and non-strings as absent.
func stringProp(p geojson.Properties, key string) string {
	s, _ := p[key].(string)
	return s
}

func boolProp(p geojson.Properties, key string) bool {
	b, _ := p[key].(bool)
	return b
}

// EncodeLocations renders locations back into the data file format.
func EncodeLocations(locs []models.Location) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, l := range locs {
		f := geojson.NewFeature(orb.Point{l.Longitude, l.Latitude})
		f.Properties["name"] = l.Name
		f.Properties["bar"] = nullable(l.Bar)
		f.Properties["bar_url"] = nullable(l.BarURL)
		f.Properties["address"] = nullable(l.Address)
		f.Properties["successful_geocode"] = l.SuccessfulGeocode
		f.Properties["start_time"] = nullable(l.StartTime)
		f.Properties["stop_time"] = nullable(l.StopTime)
		f.Properties["notes"] = nullable(l.Notes)
		fc.Append(f)
	}
	return json.Marshal(fc)
}

// EncodeCities renders the city list back into cities.json. Nil id lists
// are written as []; the caller's slice is left untouched.
func EncodeCities(cities []models.City) ([]byte, error) {
	out := make([]models.City, len(cities))
	copy(out, cities)
	for i := range out {
		if out[i].EventIDs == nil {
			out[i].EventIDs = []int{}
		}
		if out[i].RemoteEventIDs == nil {
			out[i].RemoteEventIDs = []int{}
		}
	}
	return json.Marshal(out)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
