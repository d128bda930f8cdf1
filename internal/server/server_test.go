package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"puzzled_pint_map/internal/config"
)

func TestNormalizeAddr(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ":8080"},
		{"9000", ":9000"},
		{":9000", ":9000"},
		{"127.0.0.1:9000", "127.0.0.1:9000"},
	}
	for _, tc := range cases {
		if got := normalizeAddr(tc.in); got != tc.want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewHTTPServer_Timeouts(t *testing.T) {
	srv := newHTTPServer(config.HTTPConfig{Port: "9000", WriteTimeout: 5 * time.Second}, http.NotFoundHandler())
	if srv.Addr != ":9000" {
		t.Fatalf("addr=%q", srv.Addr)
	}
	if srv.WriteTimeout != 5*time.Second {
		t.Fatalf("write timeout=%v", srv.WriteTimeout)
	}
	if srv.ReadHeaderTimeout != defaultReadHeaderTimeout || srv.IdleTimeout != defaultIdleTimeout {
		t.Fatalf("defaults not applied: %v %v", srv.ReadHeaderTimeout, srv.IdleTimeout)
	}
	if srv.MaxHeaderBytes != maxHeaderBytes {
		t.Fatalf("max header bytes=%d", srv.MaxHeaderBytes)
	}
}

func TestShutdown_NotStarted(t *testing.T) {
	var s Server
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
