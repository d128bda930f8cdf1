// Package registry keeps the toggleable map overlays in the order they were
// registered.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"puzzled_pint_map/internal/models"
)

var (
	ErrDuplicateLayer = errors.New("layer already registered")
	ErrUnknownLayer   = errors.New("layer not registered")
	ErrNilLayer       = errors.New("nil layer")
)

// Overlay is one registered layer together with its toggle label.
type Overlay struct {
	Label string
	Layer *models.Layer
}

// Registry is append-only: overlays can be added but never removed or
// reordered.
type Registry struct {
	mu        sync.RWMutex
	overlays  []Overlay
	index     map[string]int
	defaultID string
}

func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// AddOverlay appends layer under label.
func (r *Registry) AddOverlay(layer *models.Layer, label string) error {
	if layer == nil {
		return ErrNilLayer
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[layer.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateLayer, layer.ID)
	}
	r.index[layer.ID] = len(r.overlays)
	r.overlays = append(r.overlays, Overlay{Label: label, Layer: layer})
	return nil
}

// SetDefault marks the overlay displayed when the map opens.
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	r.defaultID = id
	return nil
}

// Default returns the default overlay, if one has been set.
func (r *Registry) Default() (Overlay, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[r.defaultID]
	if !ok {
		return Overlay{}, false
	}
	return r.overlays[i], true
}

// Get looks an overlay up by layer id.
func (r *Registry) Get(id string) (Overlay, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return Overlay{}, false
	}
	return r.overlays[i], true
}

// Overlays returns a copy of the overlays in registration order.
func (r *Registry) Overlays() []Overlay {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Overlay, len(r.overlays))
	copy(out, r.overlays)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.overlays)
}
