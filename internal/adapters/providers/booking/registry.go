package booking

import (
	"slices"
	"strings"
	"sync"

	"github.com/woodsxwu/WalkInNow/internal/domain/providers"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
	"github.com/woodsxwu/WalkInNow/pkg/config"
)

// Registry maps provider names to booking adapters. Adapters are registered
// at startup and resolved concurrently afterwards.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]providers.BookingAdapter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]providers.BookingAdapter)}
}

// NewDefaultRegistry registers every built-in adapter. The mock adapter is
// only registered when enabled in config.
func NewDefaultRegistry(cfg *config.Config, metrics *observability.Metrics) *Registry {
	opts := Options{
		RequestTimeout: cfg.Booking.RequestTimeout,
		DayConcurrency: cfg.Booking.DayConcurrency,
		Metrics:        metrics,
	}

	r := NewRegistry()
	r.Register(CarefinitiName, NewCarefinitiAdapter(cfg.Carefiniti, opts))
	r.Register(OceanName, NewOceanAdapter(cfg.Ocean, opts))
	if cfg.Booking.EnableMockProvider {
		r.Register(MockName, NewMockAdapter(nil))
	}
	return r
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds an adapter under name, replacing any previous one
func (r *Registry) Register(name string, adapter providers.BookingAdapter) {
	key := normalizeName(name)
	if key == "" || adapter == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[key] = adapter
}

// Resolve returns the adapter registered under name
func (r *Registry) Resolve(name string) (providers.BookingAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[normalizeName(name)]
	return adapter, ok
}

// Names returns the registered provider names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var (
	_ providers.BookingAdapter  = (*CarefinitiAdapter)(nil)
	_ providers.BookingAdapter  = (*OceanAdapter)(nil)
	_ providers.BookingAdapter  = (*MockAdapter)(nil)
	_ providers.AdapterResolver = (*Registry)(nil)
)
