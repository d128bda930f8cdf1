package models

import "fmt"

// Event is a single monthly puzzle night whose locations live in one data file.
type Event struct {
	ID   int    `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
}

// LayerID returns the overlay identifier used for this event's layer.
func (e Event) LayerID() string {
	return fmt.Sprintf("event-%d", e.ID)
}

// LatestEvent returns the last of events, which are kept in chronological
// order.
func LatestEvent(events []Event) (Event, bool) {
	if len(events) == 0 {
		return Event{}, false
	}
	return events[len(events)-1], true
}
