// Package importer builds the map's data files from the Puzzled Pint
// legacy locations feed and the homepage city list.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"puzzled_pint_map/internal/logger"
)

var (
	ErrInvalidFeed = errors.New("invalid legacy locations feed")
	ErrNoGeocoder  = errors.New("no geocoder configured")
)

// LegacyEntry is one location of the legacy feed, flattened out of its city
// group.
type LegacyEntry struct {
	Name      string // "<group> - <city>" inside a group, else the city
	City      string // city name used for fallback geocoding and linking
	Address   string // formatted street address; empty for remote entries
	Bar       string
	BarURL    string
	StartTime string
	StopTime  string
	Notes     string
}

// Remote reports whether the entry has no physical address.
func (e LegacyEntry) Remote() bool {
	return e.Address == ""
}

// ParseLegacyLocations walks the feed's locations array. Entries carrying a
// nested locations array are city groups; their own address, if any, is
// ignored.
func ParseLegacyLocations(b []byte, log *logger.Logger) ([]LegacyEntry, error) {
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidFeed)
	}
	locs := gjson.GetBytes(b, "locations")
	if !locs.IsArray() {
		return nil, fmt.Errorf("%w: missing locations array", ErrInvalidFeed)
	}

	var out []LegacyEntry
	for _, v := range locs.Array() {
		out = appendEntry(out, v, "", log)
	}
	return out, nil
}

func appendEntry(out []LegacyEntry, v gjson.Result, group string, log *logger.Logger) []LegacyEntry {
	city := strings.TrimSpace(v.Get("city").String())
	address := v.Get("address")

	if nested := v.Get("locations"); nested.IsArray() && len(nested.Array()) > 0 {
		for _, child := range nested.Array() {
			out = appendEntry(out, child, city, log)
		}
		if address.IsObject() && log != nil {
			log.Warnw("legacy_group_has_address", "city", city)
		}
		return out
	}

	e := LegacyEntry{
		Name:      city,
		City:      city,
		Bar:       v.Get("bar").String(),
		BarURL:    v.Get("bar_url").String(),
		StartTime: v.Get("start_time").String(),
		StopTime:  v.Get("stop_time").String(),
		Notes:     v.Get("notes").String(),
	}
	if group != "" {
		e.Name = group + " - " + city
		e.City = group
	}
	if address.IsObject() {
		e.Address = FormatAddress(address)
	}
	return append(out, e)
}

// FormatAddress renders a legacy address object as
// "street_1, city, state postal_code". street_2 is not needed for geocoding.
func FormatAddress(addr gjson.Result) string {
	state := addr.Get("state").String()
	if state != "" {
		state += " "
	}
	return fmt.Sprintf("%s, %s, %s%s",
		addr.Get("street_1").String(),
		addr.Get("city").String(),
		state,
		addr.Get("postal_code").String(),
	)
}

// Feed returns the raw legacy locations document of an event.
type Feed interface {
	Fetch(ctx context.Context, eventID int) ([]byte, error)
}

const maxFeedBytes = 8 << 20

// HTTPFeed fetches the feed from a URL pattern with one %d verb for the
// event id.
type HTTPFeed struct {
	pattern string
	client  *http.Client
}

func NewHTTPFeed(pattern string, timeout time.Duration) *HTTPFeed {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFeed{pattern: pattern, client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFeed) Fetch(ctx context.Context, eventID int) ([]byte, error) {
	url := fmt.Sprintf(f.pattern, eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return b, nil
}
