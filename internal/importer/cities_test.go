package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"puzzled_pint_map/internal/geocode"
	"puzzled_pint_map/internal/loader"
	"puzzled_pint_map/internal/logger"
	"puzzled_pint_map/internal/models"
	"puzzled_pint_map/internal/storage"
)

const cityListHTML = `<html><body><ul>
  <li><a href="https://www.puzzledpint.com/city/atlanta/">Atlanta</a></li>
  <li><a href="/city/boston/">
      Boston
  </a></li>
  <li><a>No link</a></li>
  <li><a href="/city/san-francisco/"><span>San</span> <b>Francisco</b></a></li>
</ul></body></html>`

func TestParseCityList(t *testing.T) {
	cities, err := ParseCityList(strings.NewReader(cityListHTML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct{ name, url string }{
		{"Atlanta", "https://www.puzzledpint.com/city/atlanta/"},
		{"Boston", "/city/boston/"},
		{"San Francisco", "/city/san-francisco/"},
	}
	if len(cities) != len(want) {
		t.Fatalf("want %d cities, got %d: %+v", len(want), len(cities), cities)
	}
	for i, w := range want {
		c := cities[i]
		if c.Name != w.name || c.URL != w.url {
			t.Fatalf("city %d: want %s %s, got %s %s", i, w.name, w.url, c.Name, c.URL)
		}
		if c.Status != models.CityDefunct || c.EventIDs == nil || c.RemoteEventIDs == nil {
			t.Fatalf("city %d should start defunct with empty lists: %+v", i, c)
		}
	}
}

func TestCityImporter_Import(t *testing.T) {
	store := newMemStore(nil)
	geo := &fakeGeocoder{points: map[string]geocode.Point{
		"Atlanta": {Address: "Atlanta, GA, USA", Latitude: 33.7, Longitude: -84.4},
		"Boston":  {Address: "Boston, MA, USA", Latitude: 42.4, Longitude: -71.1},
	}}
	im := NewCityImporter(geo, store, logger.Nop())

	rep, err := im.Import(context.Background(), strings.NewReader(cityListHTML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Cities != 3 || rep.Geocoded != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if len(rep.NotGeocoded) != 1 || rep.NotGeocoded[0] != "San Francisco" {
		t.Fatalf("unexpected not geocoded: %v", rep.NotGeocoded)
	}

	raw := string(store.files[loader.CitiesFile])
	if !strings.Contains(raw, `"event_ids":[]`) || !strings.Contains(raw, `"remote_event_ids":[]`) {
		t.Fatalf("event lists should be written as empty arrays: %s", raw)
	}
	cities, err := loader.DecodeCities([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cities[0].Coordinates == nil || cities[0].Coordinates.Latitude != 33.7 {
		t.Fatalf("Atlanta coordinates: %+v", cities[0].Coordinates)
	}
	if cities[2].Coordinates != nil {
		t.Fatalf("San Francisco must be kept without coordinates")
	}
}

func TestCityImporter_ImportGeocoderError(t *testing.T) {
	store := newMemStore(nil)
	im := NewCityImporter(&fakeGeocoder{err: errors.New("denied")}, store, logger.Nop())

	if _, err := im.Import(context.Background(), strings.NewReader(cityListHTML)); err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := store.files[loader.CitiesFile]; ok {
		t.Fatalf("cities.json must not be written on failure")
	}
}

func TestCityImporter_Reset(t *testing.T) {
	store := newMemStore(map[string]string{loader.CitiesFile: citiesJSON})
	im := NewCityImporter(&fakeGeocoder{}, store, logger.Nop())

	rep, err := im.Reset(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Cities != 4 || rep.Geocoded != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	cities, err := loader.New(store).LoadCities(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, c := range cities {
		if len(c.EventIDs) != 0 || len(c.RemoteEventIDs) != 0 {
			t.Fatalf("%s still has events: %+v", c.Name, c)
		}
	}
	if cities[0].URL != "/atlanta" || cities[0].Coordinates == nil || cities[3].Status != models.CityActive {
		t.Fatalf("reset must keep manual fields: %+v", cities)
	}
}

func TestCityImporter_ResetMissing(t *testing.T) {
	im := NewCityImporter(&fakeGeocoder{}, newMemStore(nil), logger.Nop())
	if _, err := im.Reset(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCityImporter_NoGeocoder(t *testing.T) {
	im := NewCityImporter(nil, newMemStore(nil), logger.Nop())
	if _, err := im.Import(context.Background(), strings.NewReader(cityListHTML)); !errors.Is(err, ErrNoGeocoder) {
		t.Fatalf("want ErrNoGeocoder, got %v", err)
	}
}
