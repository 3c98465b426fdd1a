// Package normalisers maps raw platform records to IntegrationItems.
package normalisers

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw records to the normaliser registered for their platform.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[domain.PlatformType]driven.ItemNormaliser
}

// NewRegistry creates a new, empty normaliser registry.
func NewRegistry() *Registry {
	return &Registry{
		normalisers: make(map[domain.PlatformType]driven.ItemNormaliser),
	}
}

// Register registers a normaliser, replacing any previous one for the same platform.
func (r *Registry) Register(normaliser driven.ItemNormaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers[normaliser.Platform()] = normaliser
}

// Get returns the normaliser for a platform, or nil if none is registered.
func (r *Registry) Get(platform domain.PlatformType) driven.ItemNormaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.normalisers[platform]
}

// Normalise converts raw using the normaliser for raw.Platform.
func (r *Registry) Normalise(raw driven.RawRecord) (*domain.IntegrationItem, error) {
	n := r.Get(raw.Platform)
	if n == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrUnsupportedPlatform, raw.Platform)
	}
	return n.Normalise(raw)
}

// DefaultRegistry creates a registry with every built-in normaliser registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(&HubSpotNormaliser{})
	r.Register(&AirtableNormaliser{})
	r.Register(&NotionNormaliser{})

	return r
}
