package models

import "github.com/paulmach/orb/geojson"

type LayerKind string

const (
	LayerEvent  LayerKind = "event"
	LayerCities LayerKind = "cities"
)

// CitiesLayerID is the fixed id of the city overlay.
const CitiesLayerID = "cities"

// Layer is a named, independently toggleable set of rendered features.
type Layer struct {
	ID       string                     `json:"id"`
	Label    string                     `json:"label"`
	Kind     LayerKind                  `json:"kind"`
	EventID  int                        `json:"event_id,omitempty"`
	Features *geojson.FeatureCollection `json:"features"`
}

// Len returns the number of features in the layer.
func (l *Layer) Len() int {
	if l == nil || l.Features == nil {
		return 0
	}
	return len(l.Features.Features)
}
