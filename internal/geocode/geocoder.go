// Package geocode resolves free-form addresses to coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"puzzled_pint_map/internal/config"
)

var ErrNotFound = errors.New("no geocoding result")

// Point is a resolved address.
type Point struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (Point, error)
}

var digitRe = regexp.MustCompile(`\d`)

// LooksPrecise reports whether a resolved address names a street location
// rather than just a city; street addresses carry a house or postal number.
func LooksPrecise(address string) bool {
	return digitRe.MatchString(address)
}

// New builds the provider named in cfg.
func New(cfg config.GeocoderConfig) (Geocoder, error) {
	client := &http.Client{Timeout: timeoutOr(cfg.Timeout)}
	switch cfg.Provider {
	case "google", "":
		if cfg.APIKey == "" {
			return nil, errors.New("geocoder.api_key (or GOOGLE_API_KEY) is required for the google provider")
		}
		return NewGoogle(cfg.APIKey, client), nil
	case "nominatim":
		return NewNominatim(cfg.UserAgent, client), nil
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.Provider)
	}
}

func timeoutOr(d time.Duration) time.Duration {
	if d <= 0 {
		return 8 * time.Second
	}
	return d
}
