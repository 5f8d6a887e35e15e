package repositories

import (
	"fmt"
	"sort"

	domainRepos "github.com/rios0rios0/monocheck/internal/domain/repositories"
)

// DiffSourceRegistry manages all registered diff source implementations.
type DiffSourceRegistry struct {
	sources map[string]domainRepos.DiffRepository
}

// NewDiffSourceRegistry creates an empty diff source registry.
func NewDiffSourceRegistry() *DiffSourceRegistry {
	return &DiffSourceRegistry{
		sources: make(map[string]domainRepos.DiffRepository),
	}
}

// Register adds a diff source under its name.
func (r *DiffSourceRegistry) Register(source domainRepos.DiffRepository) {
	r.sources[source.Name()] = source
}

// Get returns the diff source with the given name.
func (r *DiffSourceRegistry) Get(name string) (domainRepos.DiffRepository, error) {
	source, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown diff source: %q (available: %v)", name, r.Names())
	}
	return source, nil
}

// Names returns the list of registered diff source names, sorted.
func (r *DiffSourceRegistry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
