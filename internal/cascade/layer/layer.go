// Package layer defines the interface every extraction layer implements
// and the ordered registry the cascade controller runs them from.
package layer

import (
	"context"
	"sort"
	"sync"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/page"
)

// Layer is one independent extraction strategy. Layers only read the
// snapshot and return their own partial; they never see another layer's
// output. Extract errors are absorbed by the controller (logged, layer
// treated as having produced nothing) — only the controller's own input
// validation is fatal.
type Layer interface {
	// Name returns the layer identifier used in logs and metadata.
	Name() string
	// Number returns the layer's position, 1-6, ordered by trust.
	Number() int
	// Extract runs the strategy against the snapshot.
	Extract(ctx context.Context, snap *page.Snapshot, cfg config.CascadeConfig) (*model.Partial, error)
}

// Registry holds layers in cascade order.
type Registry struct {
	mu     sync.RWMutex
	layers []Layer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a layer, keeping the cascade sorted by layer number.
func (r *Registry) Register(l Layer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layers = append(r.layers, l)
	sort.SliceStable(r.layers, func(i, j int) bool {
		return r.layers[i].Number() < r.layers[j].Number()
	})
}

// Layers returns the registered layers in cascade order.
func (r *Registry) Layers() []Layer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Layer, len(r.layers))
	copy(out, r.layers)
	return out
}

// Get returns the layer with the given number, or nil.
func (r *Registry) Get(number int) Layer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.layers {
		if l.Number() == number {
			return l
		}
	}
	return nil
}
