// Package provider selects the TrackingProvider implementation for the
// process. The active provider is built once at wiring time and injected
// into the services that need it.
package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/trackflow/tracking-service/internal/core/ports"
	"github.com/trackflow/tracking-service/internal/infrastructure/config"
	"github.com/trackflow/tracking-service/internal/infrastructure/provider/trackingmore"
)

// Factory builds a provider from configuration.
type Factory func(cfg config.ProviderConfig) (ports.TrackingProvider, error)

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry that knows the built-in providers.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(trackingmore.Name, func(cfg config.ProviderConfig) (ports.TrackingProvider, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("provider %s: TRACKINGMORE_API_KEY is not set", trackingmore.Name)
		}
		return trackingmore.New(trackingmore.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}), nil
	})
	return r
}

// Register adds or replaces the factory for name. Tests use it to swap in a
// fake provider before wiring.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = f
}

// New builds the provider named by cfg.Name.
func (r *Registry) New(cfg config.ProviderConfig) (ports.TrackingProvider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	if name == "" {
		name = trackingmore.Name
	}

	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown tracking provider %q (known: %s)", name, strings.Join(r.Names(), ", "))
	}
	return f(cfg)
}

// Names lists the registered providers in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
