package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpStoreTimeout = 8 * time.Second

// HTTPStore reads data files published under a base URL, e.g. the static
// site that hosts the map page.
type HTTPStore struct {
	base   string
	client *http.Client
}

// NewHTTPStore returns a read-only store. A nil client gets a default with
// a request timeout.
func NewHTTPStore(baseURL string, client *http.Client) *HTTPStore {
	if client == nil {
		client = &http.Client{Timeout: httpStoreTimeout}
	}
	return &HTTPStore{base: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *HTTPStore) Read(ctx context.Context, name string) ([]byte, error) {
	u := s.base + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", u, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (s *HTTPStore) Write(context.Context, string, []byte) error {
	return ErrReadOnly
}
