// Package shader exposes the WGSL twin of package noise so GPU pipelines can
// import it next to their own shaders.
package shader

import (
	"fmt"
	"sync"

	"github.com/MeKo-Tech/noisy/assets"
)

// ImportPath is the module path under which the prelude is registered.
const ImportPath = "noisy::prelude"

// Registry accepts shader sources keyed by import path, as composer-style
// shader loaders do.
type Registry interface {
	AddShaderSource(importPath, source string) error
}

// Source returns the WGSL prelude.
func Source() string {
	return assets.NoisePrelude
}

var registered sync.Map // Registry -> struct{}

// Register adds the prelude to r under ImportPath. Repeated calls with the
// same registry do nothing. r must be comparable (a pointer, usually).
func Register(r Registry) error {
	if _, loaded := registered.LoadOrStore(r, struct{}{}); loaded {
		return nil
	}
	if err := r.AddShaderSource(ImportPath, Source()); err != nil {
		registered.Delete(r)
		return fmt.Errorf("failed to register %s: %w", ImportPath, err)
	}
	return nil
}

// MapRegistry is an in-memory Registry.
type MapRegistry struct {
	mu      sync.RWMutex
	sources map[string]string
}

// NewMapRegistry returns an empty registry.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{sources: make(map[string]string)}
}

// AddShaderSource stores source under importPath. Adding a different source
// under a taken path is an error.
func (m *MapRegistry) AddShaderSource(importPath, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.sources[importPath]; ok && old != source {
		return fmt.Errorf("import path %q already registered", importPath)
	}
	m.sources[importPath] = source
	return nil
}

// Lookup returns the source registered under importPath.
func (m *MapRegistry) Lookup(importPath string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sources[importPath]
	return s, ok
}

// Len reports the number of registered sources.
func (m *MapRegistry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sources)
}
