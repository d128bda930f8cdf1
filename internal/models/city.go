package models

// CityStatus is the participation category of a city.
type CityStatus string

const (
	CityActive  CityStatus = "active"
	CityRemote  CityStatus = "remote"
	CityDefunct CityStatus = "defunct"
)

// Valid reports whether s is one of the known statuses.
func (s CityStatus) Valid() bool {
	switch s {
	case CityActive, CityRemote, CityDefunct:
		return true
	}
	return false
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// City is an entry of cities.json.
type City struct {
	Name           string       `json:"name"`
	URL            string       `json:"url"`
	Status         CityStatus   `json:"status"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
	EventIDs       []int        `json:"event_ids"`
	RemoteEventIDs []int        `json:"remote_event_ids"`
}
