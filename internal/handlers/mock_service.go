package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"puzzled_pint_map/internal/importer"
	"puzzled_pint_map/internal/models"
	"puzzled_pint_map/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockMap struct {
	mu       sync.Mutex
	events   []models.Event
	snap     *service.MapSnapshot
	buildErr error
	builds   int

	// built replaces snap on a successful Build when set
	built  *service.MapSnapshot
	stream chan service.MapEvent
}

func (m *mockMap) Events() []models.Event { return m.events }

func (m *mockMap) Build(ctx context.Context) (*service.MapSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds++
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	if m.built != nil {
		m.snap = m.built
	}
	return m.snap, nil
}

func (m *mockMap) Snapshot() (*service.MapSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, service.ErrMapNotBuilt
	}
	return m.snap, nil
}

func (m *mockMap) Layer(id string) (*models.Layer, error) {
	snap, err := m.Snapshot()
	if err != nil {
		return nil, err
	}
	ov, ok := snap.Registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrLayerUnknown, id)
	}
	return ov.Layer, nil
}

func (m *mockMap) Subscribe() (<-chan service.MapEvent, func()) {
	if m.stream == nil {
		m.stream = make(chan service.MapEvent, 8)
	}
	return m.stream, func() {}
}

func (m *mockMap) Run(ctx context.Context, interval time.Duration) {}

type mockImports struct {
	locRep   importer.LocationReport
	cityRep  importer.CityReport
	resetRep importer.CityReport
	runs     []models.ImportRun
	err      error

	lastEventID int
	lastBody    string
	lastKind    string
	lastLimit   int
	resetCalls  int
}

func (m *mockImports) ImportLocations(ctx context.Context, eventID int) (importer.LocationReport, error) {
	m.lastEventID = eventID
	return m.locRep, m.err
}

func (m *mockImports) ImportCities(ctx context.Context, r io.Reader) (importer.CityReport, error) {
	b, _ := io.ReadAll(r)
	m.lastBody = string(b)
	return m.cityRep, m.err
}

func (m *mockImports) ResetCities(ctx context.Context) (importer.CityReport, error) {
	m.resetCalls++
	return m.resetRep, m.err
}

func (m *mockImports) History(ctx context.Context, kind string, limit int) ([]models.ImportRun, error) {
	m.lastKind = kind
	m.lastLimit = limit
	return m.runs, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, "")
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
