package models

// Location is one hosting location of an event. Optional fields are empty
// strings when absent.
type Location struct {
	Name              string  `json:"name"`
	Address           string  `json:"address,omitempty"`
	Bar               string  `json:"bar,omitempty"`
	BarURL            string  `json:"bar_url,omitempty"`
	StartTime         string  `json:"start_time,omitempty"`
	StopTime          string  `json:"stop_time,omitempty"`
	Notes             string  `json:"notes,omitempty"`
	SuccessfulGeocode bool    `json:"successful_geocode"`
	Longitude         float64 `json:"longitude"`
	Latitude          float64 `json:"latitude"`
}

// InPerson reports whether the location has a physical venue.
func (l Location) InPerson() bool {
	return l.Address != ""
}
