package backends

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/de-tools/service-atlas/pkg/services/config"
	"github.com/de-tools/service-atlas/pkg/store/backend"
)

// Factory opens a backend from the loaded configuration.
type Factory func(ctx context.Context, cfg *config.Config) (backend.Backend, error)

// Registry manages backend factories keyed by the "backend" setting.
type Registry interface {
	// Register adds a new backend factory
	Register(name string, factory Factory) error
	// Create opens the backend selected by cfg.Backend
	Create(ctx context.Context, cfg *config.Config) (backend.Backend, error)
	// ListBackends returns the registered backend names, sorted
	ListBackends() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]Factory),
	}
}

// Default returns a registry with every built-in backend.
func Default() Registry {
	r := NewRegistry()
	for name, f := range builtin {
		// names are unique and factories non-nil
		_ = r.Register(name, f)
	}
	return r
}

func (r *registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("backend name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("backend %q is already registered", name)
	}

	r.factories[name] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, cfg *config.Config) (backend.Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	r.mu.RLock()
	factory, exists := r.factories[cfg.Backend]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("backend %q is not registered", cfg.Backend)
	}

	return factory(ctx, cfg)
}

func (r *registry) ListBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
