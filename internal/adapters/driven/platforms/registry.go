// Package platforms holds the adapter registry and the HTTP plumbing shared
// by the per-platform adapters in its subpackages.
package platforms

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.PlatformRegistry = (*Registry)(nil)

// Registry resolves platform adapters by platform type.
type Registry struct {
	mu       sync.RWMutex
	adapters map[domain.PlatformType]driven.PlatformAdapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...driven.PlatformAdapter) *Registry {
	r := &Registry{
		adapters: make(map[domain.PlatformType]driven.PlatformAdapter),
	}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register registers an adapter, replacing any previous one for the same platform.
func (r *Registry) Register(adapter driven.PlatformAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Platform()] = adapter
}

// Get returns the adapter for a platform.
func (r *Registry) Get(platform domain.PlatformType) (driven.PlatformAdapter, error) {
	r.mu.RLock()
	adapter, ok := r.adapters[platform]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedPlatform, platform)
	}
	return adapter, nil
}

// Platforms returns the registered platforms in sorted order.
func (r *Registry) Platforms() []domain.PlatformType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PlatformType, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
