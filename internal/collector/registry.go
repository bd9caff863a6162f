package collector

import (
	"fmt"
	"sort"
	"sync"

	"github.com/newthinker/sigtrail/internal/core"
	"go.uber.org/zap"
)

// Registry manages collectors by name
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]Collector
}

// NewRegistry creates a new collector registry
func NewRegistry() *Registry {
	return &Registry{
		collectors: make(map[string]Collector),
	}
}

// Register adds a collector to the registry
func (r *Registry) Register(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[c.Name()] = c
}

// Get retrieves a collector by name
func (r *Registry) Get(name string) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[name]
	return c, ok
}

// Names returns the registered collector names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain builds a chain from the named collectors, in order
func (r *Registry) Chain(logger *zap.Logger, names ...string) (*Chain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	collectors := make([]Collector, 0, len(names))
	for _, name := range names {
		c, ok := r.collectors[name]
		if !ok {
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown collector %q", name))
		}
		collectors = append(collectors, c)
	}
	return NewChain(logger, collectors...), nil
}
