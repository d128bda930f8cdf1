package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"puzzled_pint_map/internal/config"
	"puzzled_pint_map/internal/feature"
	"puzzled_pint_map/internal/join"
	"puzzled_pint_map/internal/logger"
	"puzzled_pint_map/internal/models"
	"puzzled_pint_map/internal/registry"
)

// Map event types sent to subscribers.
const (
	EventMapBuilding = "map_building"
	EventLayerLoaded = "layer_loaded"
	EventLayerFailed = "layer_failed"
	EventMapReady    = "map_ready"
	EventMapFailed   = "map_failed"
)

var (
	ErrMapNotBuilt  = errors.New("map not built yet")
	ErrLayerUnknown = errors.New("unknown layer")
	// ErrNoEventLayers fails a partial build in which no event layer loaded.
	ErrNoEventLayers = errors.New("no event layer loaded")
)

// DataSource reads the decoded data files. *loader.Loader satisfies it.
type DataSource interface {
	LoadCities(ctx context.Context) ([]models.City, error)
	LoadLocations(ctx context.Context, eventID int) ([]models.Location, error)
}

// MapSnapshot is one finished build. It is never modified after publication.
type MapSnapshot struct {
	Registry *registry.Registry
	BuiltAt  time.Time
	Missing  []string // layers that failed to load; only non-empty with allow_partial
}

// MapEvent is a build progress notification.
type MapEvent struct {
	Type      string    `json:"type"`
	LayerID   string    `json:"layer_id,omitempty"`
	Completed int       `json:"completed,omitempty"`
	Total     int       `json:"total,omitempty"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

const subscriberBuffer = 16

// MapService builds the overlay registry from the data files and keeps the
// latest successful build.
type MapService struct {
	source DataSource
	events []models.Event
	cfg    config.MapConfig
	log    *logger.Logger
	now    func() time.Time

	buildMu sync.Mutex
	current atomic.Pointer[MapSnapshot]

	subMu  sync.Mutex
	subs   map[int]chan MapEvent
	nextID int
}

func NewMapService(source DataSource, events []models.Event, cfg config.MapConfig, log *logger.Logger) *MapService {
	return &MapService{
		source: source,
		events: events,
		cfg:    cfg,
		log:    log.Named("map"),
		now:    time.Now,
		subs:   make(map[int]chan MapEvent),
	}
}

// Events returns the configured events in chronological order.
func (s *MapService) Events() []models.Event {
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Build loads every layer and, once all loads have completed, registers
// them: events in configured order, then the city overlay. The last event is
// the default overlay. A failed build leaves the previous snapshot in place.
// With allow_partial, layers that failed are listed in MapSnapshot.Missing
// and the build still succeeds.
func (s *MapService) Build(ctx context.Context) (*MapSnapshot, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	if s.cfg.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.BuildTimeout)
		defer cancel()
	}

	loads, ids := s.loads()
	s.publish(MapEvent{Type: EventMapBuilding, Total: len(loads)})

	policy := join.RequireAll
	if s.cfg.AllowPartial {
		policy = join.AllowPartial
	}
	b := join.New(loads,
		join.WithPolicy[*models.Layer](policy),
		join.WithLimit[*models.Layer](s.cfg.MaxParallel),
		join.WithProgress[*models.Layer](func(r join.Result[*models.Layer], completed, total int) {
			ev := MapEvent{Type: EventLayerLoaded, LayerID: ids[r.Index], Completed: completed, Total: total}
			if r.Err != nil {
				ev.Type = EventLayerFailed
				ev.Error = r.Err.Error()
				s.log.Warnw("layer_load_failed", "layer", ids[r.Index], "err", r.Err)
			}
			s.publish(ev)
		}),
	)

	var (
		snap   *MapSnapshot
		regErr error
	)
	err := b.Run(ctx, func(results []join.Result[*models.Layer]) {
		snap, regErr = s.assemble(results, ids)
	})
	if regErr != nil {
		err = regErr
	}
	if err != nil && snap != nil && len(s.events) > 0 && eventLayers(snap.Registry) == 0 {
		err = fmt.Errorf("%w: %w", ErrNoEventLayers, err)
		snap = nil
	}
	if snap == nil || (err != nil && !s.cfg.AllowPartial) {
		if err == nil {
			err = errors.New("map build produced no snapshot")
		}
		s.log.Errorw("map_build_failed", "err", err)
		s.publish(MapEvent{Type: EventMapFailed, Error: err.Error()})
		return nil, err
	}
	if err != nil {
		s.log.Warnw("map_partial", "missing", snap.Missing, "err", err)
	}

	s.current.Store(snap)
	s.log.Infow("map_ready", "layers", snap.Registry.Len())
	s.publish(MapEvent{Type: EventMapReady, Completed: snap.Registry.Len(), Total: len(loads)})
	return snap, nil
}

func eventLayers(reg *registry.Registry) int {
	n := 0
	for _, ov := range reg.Overlays() {
		if ov.Layer.Kind == models.LayerEvent {
			n++
		}
	}
	return n
}

// loads returns one load per configured event, then the city load, together
// with the layer id each load produces.
func (s *MapService) loads() ([]join.LoadFunc[*models.Layer], []string) {
	loads := make([]join.LoadFunc[*models.Layer], 0, len(s.events)+1)
	ids := make([]string, 0, len(s.events)+1)
	for _, e := range s.events {
		e := e
		loads = append(loads, func(ctx context.Context) (*models.Layer, error) {
			locs, err := s.source.LoadLocations(ctx, e.ID)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", e.ID, err)
			}
			return feature.EventLayer(e, locs), nil
		})
		ids = append(ids, e.LayerID())
	}
	if s.cfg.CitiesOverlay {
		label := s.cfg.CitiesLabel
		loads = append(loads, func(ctx context.Context) (*models.Layer, error) {
			cities, err := s.source.LoadCities(ctx)
			if err != nil {
				return nil, fmt.Errorf("cities: %w", err)
			}
			return feature.CitiesLayer(label, cities), nil
		})
		ids = append(ids, models.CitiesLayerID)
	}
	return loads, ids
}

// assemble registers the loaded layers in definition order.
func (s *MapService) assemble(results []join.Result[*models.Layer], ids []string) (*MapSnapshot, error) {
	reg := registry.New()
	snap := &MapSnapshot{Registry: reg, BuiltAt: s.now().UTC()}

	var defaultID string
	for _, r := range results {
		if !r.OK() || r.Value == nil {
			snap.Missing = append(snap.Missing, ids[r.Index])
			continue
		}
		if err := reg.AddOverlay(r.Value, r.Value.Label); err != nil {
			return nil, err
		}
		if r.Value.Kind == models.LayerEvent {
			defaultID = r.Value.ID
		}
	}
	if defaultID != "" {
		if err := reg.SetDefault(defaultID); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// Snapshot returns the latest successful build.
func (s *MapService) Snapshot() (*MapSnapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrMapNotBuilt
	}
	return snap, nil
}

// Layer returns one layer of the latest build.
func (s *MapService) Layer(id string) (*models.Layer, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	ov, ok := snap.Registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerUnknown, id)
	}
	return ov.Layer, nil
}

// Subscribe returns a channel of build events and a function that
// unsubscribes. Slow subscribers miss events rather than block a build.
func (s *MapService) Subscribe() (<-chan MapEvent, func()) {
	ch := make(chan MapEvent, subscriberBuffer)
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *MapService) publish(ev MapEvent) {
	if ev.At.IsZero() {
		ev.At = s.now().UTC()
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Run rebuilds the map every interval until ctx is canceled.
func (s *MapService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			// failures are logged and published by Build
			_, _ = s.Build(ctx)
		}
	}
}
