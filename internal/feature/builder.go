// Package feature turns location and city records into renderable map
// features: a point, a marker style and popup markup.
package feature

import (
	"puzzled_pint_map/internal/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/samber/lo"
)

// Marker icon variants.
const (
	IconInPerson = "in-person"
	IconRemote   = "remote"
)

// Icon picks the marker variant for a location.
func Icon(l models.Location) string {
	return lo.Ternary(l.InPerson(), IconInPerson, IconRemote)
}

// Style is a circle marker style for a city.
type Style struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor"`
	Radius      int     `json:"radius"`
	FillOpacity float64 `json:"fillOpacity"`
}

var cityStyles = map[models.CityStatus]Style{
	models.CityActive:  {Color: "#1b7837", FillColor: "#5aae61", Radius: 8, FillOpacity: 0.8},
	models.CityRemote:  {Color: "#2166ac", FillColor: "#67a9cf", Radius: 6, FillOpacity: 0.6},
	models.CityDefunct: {Color: "#636363", FillColor: "#bdbdbd", Radius: 4, FillOpacity: 0.4},
}

// CityStyle returns the style for a status; unknown statuses render as defunct.
func CityStyle(s models.CityStatus) Style {
	if st, ok := cityStyles[s]; ok {
		return st
	}
	return cityStyles[models.CityDefunct]
}

// LocationFeature builds the marker feature of one location.
func LocationFeature(l models.Location) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{l.Longitude, l.Latitude})
	f.Properties["name"] = l.Name
	f.Properties["icon"] = Icon(l)
	f.Properties["popup"] = Popup(l)
	f.Properties["successful_geocode"] = l.SuccessfulGeocode
	return f
}

// EventLayer renders every location of an event into one layer.
func EventLayer(e models.Event, locs []models.Location) *models.Layer {
	fc := geojson.NewFeatureCollection()
	for _, l := range locs {
		fc.Append(LocationFeature(l))
	}
	return &models.Layer{
		ID:       e.LayerID(),
		Label:    e.Name,
		Kind:     models.LayerEvent,
		EventID:  e.ID,
		Features: fc,
	}
}

// CityFeature builds the circle feature of a city. Cities without
// coordinates yield nil.
func CityFeature(c models.City) *geojson.Feature {
	if c.Coordinates == nil {
		return nil
	}
	f := geojson.NewFeature(orb.Point{c.Coordinates.Longitude, c.Coordinates.Latitude})
	f.Properties["name"] = c.Name
	f.Properties["status"] = string(c.Status)
	f.Properties["style"] = CityStyle(c.Status)
	f.Properties["popup"] = CityPopup(c)
	return f
}

// CitiesLayer renders all placeable cities into the city overlay.
func CitiesLayer(label string, cities []models.City) *models.Layer {
	fc := geojson.NewFeatureCollection()
	for _, c := range cities {
		if f := CityFeature(c); f != nil {
			fc.Append(f)
		}
	}
	return &models.Layer{
		ID:       models.CitiesLayerID,
		Label:    label,
		Kind:     models.LayerCities,
		Features: fc,
	}
}
