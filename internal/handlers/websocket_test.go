package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"puzzled_pint_map/internal/service"
)

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialWS(t *testing.T, s *service.Service) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil, "")
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_PendingThenProgress(t *testing.T) {
	m := &mockMap{stream: make(chan service.MapEvent, 8)}
	conn := dialWS(t, &service.Service{Map: m})

	env := readEnvelope(t, conn)
	if env.Type != wsTypeMapPending || len(env.Data) != 0 {
		t.Fatalf("expected map_pending without data, got %+v", env)
	}

	m.stream <- service.MapEvent{Type: service.EventLayerLoaded, LayerID: "event-189", Completed: 1, Total: 2}
	env = readEnvelope(t, conn)
	if env.Type != service.EventLayerLoaded {
		t.Fatalf("expected layer_loaded, got %+v", env)
	}
	var ev service.MapEvent
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if ev.LayerID != "event-189" || ev.Completed != 1 || ev.Total != 2 {
		t.Fatalf("unexpected event: %+v", ev)
	}

	m.stream <- service.MapEvent{Type: service.EventMapFailed, Error: "locations_190.geojson: not found"}
	env = readEnvelope(t, conn)
	if env.Type != service.EventMapFailed || env.Error != "locations_190.geojson: not found" {
		t.Fatalf("expected map_failed with error, got %+v", env)
	}
}

func TestWebSocket_SnapshotAfterReady(t *testing.T) {
	m := &mockMap{stream: make(chan service.MapEvent, 8)}
	conn := dialWS(t, &service.Service{Map: m})

	if env := readEnvelope(t, conn); env.Type != wsTypeMapPending {
		t.Fatalf("expected map_pending, got %+v", env)
	}

	m.mu.Lock()
	m.snap = testSnapshot(t)
	m.mu.Unlock()
	m.stream <- service.MapEvent{Type: service.EventMapReady, Completed: 3, Total: 3}

	if env := readEnvelope(t, conn); env.Type != service.EventMapReady {
		t.Fatalf("expected map_ready, got %+v", env)
	}
	env := readEnvelope(t, conn)
	if env.Type != wsTypeMap {
		t.Fatalf("expected a map snapshot after map_ready, got %+v", env)
	}
	var mr MapResponse
	if err := json.Unmarshal(env.Data, &mr); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if len(mr.Overlays) != 3 || mr.Default != "event-190" {
		t.Fatalf("unexpected snapshot: %+v", mr)
	}
}

func TestWebSocket_InitialSnapshot(t *testing.T) {
	m := &mockMap{snap: testSnapshot(t)}
	conn := dialWS(t, &service.Service{Map: m})

	env := readEnvelope(t, conn)
	if env.Type != wsTypeMap {
		t.Fatalf("expected map, got %+v", env)
	}
	var mr MapResponse
	if err := json.Unmarshal(env.Data, &mr); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if mr.Overlays[0].ID != "event-189" || mr.Overlays[2].ID != "cities" {
		t.Fatalf("overlays out of order: %+v", mr.Overlays)
	}
}

func TestWebSocket_StreamClosed_ClosesConnection(t *testing.T) {
	m := &mockMap{stream: make(chan service.MapEvent)}
	conn := dialWS(t, &service.Service{Map: m})

	readEnvelope(t, conn)
	close(m.stream)

	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}
