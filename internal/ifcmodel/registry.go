// -- internal/ifcmodel/registry.go --
// Description: Registry of loaded models and their renderer materials. The
// registry is the single source of truth for what is on screen; the ghost
// engine and the HTTP surface both go through it.

package ifcmodel

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrModelNotFound reports a lookup for a model ID the registry does not hold.
var ErrModelNotFound = errors.New("model not found")

// Model is one loaded building model and its materials.
type Model struct {
	ID        string
	Name      string
	Materials []*Material
}

// Registry tracks loaded models. Writes come from the single load/unload
// path; the mutex exists because the HTTP surface reads concurrently.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
	log    *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		models: make(map[string]*Model),
		log:    logger.Named("registry"),
	}
}

// Register adds or replaces a loaded model.
func (r *Registry) Register(m *Model) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("register: model must carry an ID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[m.ID] = m
	r.log.Info("model registered",
		zap.String("model", m.ID),
		zap.Int("materials", len(m.Materials)))
	return nil
}

// Unregister removes a model. Removing an unknown ID is a no-op.
func (r *Registry) Unregister(modelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.models, modelID)
}

// Get returns the model with the given ID.
func (r *Registry) Get(modelID string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[modelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
	}
	return m, nil
}

// Models returns all loaded models sorted by ID.
func (r *Registry) Models() []*Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Model, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EachMaterial visits every material of every loaded model, in model-ID
// order. The visitor must not call back into the registry.
func (r *Registry) EachMaterial(fn func(modelID string, mat *Material)) {
	for _, m := range r.Models() {
		for _, mat := range m.Materials {
			fn(m.ID, mat)
		}
	}
}
