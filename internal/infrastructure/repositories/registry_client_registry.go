package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	domainRepos "github.com/rios0rios0/monocheck/internal/domain/repositories"
)

// RegistryFactory creates a RegistryRepository from the registry settings.
type RegistryFactory func(settings entities.RegistrySettings) domainRepos.RegistryRepository

// RegistryClientRegistry manages all registered package registry clients.
type RegistryClientRegistry struct {
	factories map[string]RegistryFactory
}

// NewRegistryClientRegistry creates an empty registry client registry.
func NewRegistryClientRegistry() *RegistryClientRegistry {
	return &RegistryClientRegistry{
		factories: make(map[string]RegistryFactory),
	}
}

// Register adds a client factory under the given kind (e.g. "npm").
func (r *RegistryClientRegistry) Register(kind string, factory RegistryFactory) {
	r.factories[kind] = factory
}

// Get returns a configured client for the given kind.
func (r *RegistryClientRegistry) Get(
	kind string,
	settings entities.RegistrySettings,
) (domainRepos.RegistryRepository, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown registry kind: %q (available: %v)", kind, r.Kinds())
	}
	return factory(settings), nil
}

// Kinds returns the registered registry kinds, sorted.
func (r *RegistryClientRegistry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
