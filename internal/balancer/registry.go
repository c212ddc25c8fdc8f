package balancer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/angeloszaimis/balancer-pools/config"
)

// Constructor builds a backend from its validated configuration entry.
type Constructor func(cfg config.BackendConfig, log *slog.Logger) (Balancer, error)

// Registry maps backend kind tags to constructors. Kinds are registered at
// startup; configuration then resolves each entry's kind through the
// registry, so new backend kinds plug in without touching the composite.
type Registry struct {
	mutex        sync.RWMutex
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// Register binds a kind tag to a constructor. Registering the same kind
// twice replaces the earlier constructor.
func (r *Registry) Register(kind string, ctor Constructor) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.constructors[kind] = ctor
}

// Build resolves cfg.Kind and invokes its constructor. An unknown kind is a
// configuration error, reported before any remote call is made.
func (r *Registry) Build(cfg config.BackendConfig, log *slog.Logger) (Balancer, error) {
	r.mutex.RLock()
	ctor, ok := r.constructors[cfg.Kind]
	r.mutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown balancer kind %q", cfg.Kind)
	}

	return ctor(cfg, log)
}

// Kinds returns the registered kind tags, for diagnostics.
func (r *Registry) Kinds() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	kinds := make([]string, 0, len(r.constructors))
	for kind := range r.constructors {
		kinds = append(kinds, kind)
	}
	return kinds
}
