package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const googleEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// Google uses the Google Maps Geocoding API.
type Google struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewGoogle(apiKey string, client *http.Client) *Google {
	return &Google{apiKey: apiKey, endpoint: googleEndpoint, client: client}
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *Google) Geocode(ctx context.Context, query string) (Point, error) {
	params := url.Values{}
	params.Set("address", query)
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Point{}, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return Point{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("google geocode: unexpected status %s", resp.Status)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Point{}, fmt.Errorf("google geocode: decode: %w", err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return Point{}, fmt.Errorf("%w for %q", ErrNotFound, query)
	default:
		return Point{}, fmt.Errorf("google geocode: %s %s", body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		return Point{}, fmt.Errorf("%w for %q", ErrNotFound, query)
	}

	first := body.Results[0]
	return Point{
		Address:   first.FormattedAddress,
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}, nil
}
