package runner

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages runner registration and lookup
type Registry struct {
	mu      sync.RWMutex
	runners map[string]Runner
}

// NewRegistry creates a new runner registry
func NewRegistry() *Registry {
	return &Registry{
		runners: make(map[string]Runner),
	}
}

// Register adds a runner to the registry, replacing any runner of the same name
func (r *Registry) Register(rn Runner) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runners[rn.Name()] = rn
}

// Get retrieves the runner registered under name
func (r *Registry) Get(name string) (Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rn, ok := r.runners[name]
	if !ok {
		return nil, fmt.Errorf("no runner registered with name: %s", name)
	}
	return rn, nil
}

// Has checks if a runner is registered under name
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.runners[name]
	return ok
}

// Names returns all registered runner names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
