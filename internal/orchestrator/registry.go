package orchestrator

import (
	"sync"

	"github.com/jonathan/trial-reconciler/internal/types"
)

// Registry is the lookup table of all investigations, keyed by identifier.
// It is the only structure shared between background pipelines and read
// requests: every mutation runs under the lock, and readers receive deep
// clones, so a status read during an in-flight update returns either the
// pre- or post-mutation state, never a torn one.
type Registry struct {
	mu             sync.RWMutex
	investigations map[string]*types.Investigation
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{investigations: make(map[string]*types.Investigation)}
}

// Get returns a snapshot of an investigation, or false for an unknown id.
func (r *Registry) Get(id string) (*types.Investigation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.investigations[id]
	if !ok {
		return nil, false
	}
	return inv.Clone(), true
}

// put registers a new investigation record.
func (r *Registry) put(inv *types.Investigation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.investigations[inv.InvestigationID] = inv
}

// update applies fn to an investigation under the lock. The whole mutation
// is atomic with respect to Get.
func (r *Registry) update(id string, fn func(inv *types.Investigation)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.investigations[id]; ok {
		fn(inv)
	}
}
