package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const nominatimEndpoint = "https://nominatim.openstreetmap.org/search"

// Nominatim uses the OpenStreetMap search API. Its usage policy requires an
// identifying User-Agent.
type Nominatim struct {
	userAgent string
	endpoint  string
	client    *http.Client
}

func NewNominatim(userAgent string, client *http.Client) *Nominatim {
	return &Nominatim{userAgent: userAgent, endpoint: nominatimEndpoint, client: client}
}

type nominatimResponse []struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (n *Nominatim) Geocode(ctx context.Context, query string) (Point, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Point{}, err
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return Point{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("nominatim: unexpected status %s", resp.Status)
	}

	var results nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Point{}, fmt.Errorf("nominatim: decode: %w", err)
	}
	if len(results) == 0 {
		return Point{}, fmt.Errorf("%w for %q", ErrNotFound, query)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("nominatim: bad lat %q: %w", first.Lat, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("nominatim: bad lon %q: %w", first.Lon, err)
	}
	return Point{Address: first.DisplayName, Latitude: lat, Longitude: lon}, nil
}
