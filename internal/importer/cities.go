package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"puzzled_pint_map/internal/geocode"
	"puzzled_pint_map/internal/loader"
	"puzzled_pint_map/internal/logger"
	"puzzled_pint_map/internal/models"
	"puzzled_pint_map/internal/storage"
)

// ParseCityList turns every link of the homepage city list into a city.
// Cities start out defunct with no events; location imports link them.
func ParseCityList(r io.Reader) ([]models.City, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse city list: %w", err)
	}

	var cities []models.City
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			name := strings.TrimSpace(textOf(n))
			href := attr(n, "href")
			if name != "" && href != "" {
				cities = append(cities, models.City{
					Name:           name,
					URL:            href,
					Status:         models.CityDefunct,
					EventIDs:       []int{},
					RemoteEventIDs: []int{},
				})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return cities, nil
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// CityReport summarises a city list import or reset.
type CityReport struct {
	Cities      int      `json:"cities"`
	Geocoded    int      `json:"geocoded"`
	NotGeocoded []string `json:"not_geocoded,omitempty"`
}

// CityImporter maintains cities.json.
type CityImporter struct {
	geo   geocode.Geocoder
	store storage.Store
	log   *logger.Logger
}

func NewCityImporter(geo geocode.Geocoder, store storage.Store, log *logger.Logger) *CityImporter {
	return &CityImporter{geo: geo, store: store, log: log.Named("city_import")}
}

// Import replaces cities.json with the cities of an HTML city list. Each
// name is geocoded; a city that cannot be located is kept without
// coordinates and is left off the map.
func (im *CityImporter) Import(ctx context.Context, r io.Reader) (CityReport, error) {
	var rep CityReport
	if im.geo == nil {
		return rep, ErrNoGeocoder
	}
	cities, err := ParseCityList(r)
	if err != nil {
		return rep, err
	}

	for i := range cities {
		p, err := im.geo.Geocode(ctx, cities[i].Name)
		if errors.Is(err, geocode.ErrNotFound) {
			im.log.Warnw("city_not_geocoded", "city", cities[i].Name)
			rep.NotGeocoded = append(rep.NotGeocoded, cities[i].Name)
			continue
		}
		if err != nil {
			return rep, fmt.Errorf("geocode city %q: %w", cities[i].Name, err)
		}
		cities[i].Coordinates = &models.Coordinates{Latitude: p.Latitude, Longitude: p.Longitude}
		rep.Geocoded++
	}
	rep.Cities = len(cities)

	if err := im.write(ctx, cities); err != nil {
		return rep, err
	}
	im.log.Infow("cities_written", "cities", rep.Cities, "geocoded", rep.Geocoded)
	return rep, nil
}

// Reset clears every city's event lists and keeps the other fields, which
// may have been edited by hand.
func (im *CityImporter) Reset(ctx context.Context) (CityReport, error) {
	var rep CityReport
	b, err := im.store.Read(ctx, loader.CitiesFile)
	if err != nil {
		return rep, fmt.Errorf("read cities: %w", err)
	}
	cities, err := loader.DecodeCities(b)
	if err != nil {
		return rep, err
	}
	for i := range cities {
		cities[i].EventIDs = []int{}
		cities[i].RemoteEventIDs = []int{}
		if cities[i].Coordinates != nil {
			rep.Geocoded++
		}
	}
	rep.Cities = len(cities)

	if err := im.write(ctx, cities); err != nil {
		return rep, err
	}
	im.log.Infow("cities_reset", "cities", rep.Cities)
	return rep, nil
}

func (im *CityImporter) write(ctx context.Context, cities []models.City) error {
	b, err := loader.EncodeCities(cities)
	if err != nil {
		return fmt.Errorf("encode cities: %w", err)
	}
	if err := im.store.Write(ctx, loader.CitiesFile, b); err != nil {
		return fmt.Errorf("write cities: %w", err)
	}
	return nil
}
