//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
)

// DependencyGraphBuilder helps create package indexes with a fluent interface.
// Packages and dependencies are declared as "name" (any version), "name@2"
// or "name@2.1".
type DependencyGraphBuilder struct {
	*testkit.BaseBuilder
	entries   []entities.DependencyGraphEntry
	notNeeded []entities.NotNeededPackage
}

// NewDependencyGraphBuilder creates an empty graph builder.
func NewDependencyGraphBuilder() *DependencyGraphBuilder {
	return &DependencyGraphBuilder{BaseBuilder: testkit.NewBaseBuilder()}
}

// WithPackage adds a package version and its dependencies.
func (b *DependencyGraphBuilder) WithPackage(spec string, dependencies ...string) *DependencyGraphBuilder {
	entry := entities.DependencyGraphEntry{Identity: ParseIdentity(spec)}
	for _, dep := range dependencies {
		entry.Dependencies = append(entry.Dependencies, ParseIdentity(dep))
	}
	b.entries = append(b.entries, entry)
	return b
}

// WithNotNeeded adds a deprecation record.
func (b *DependencyGraphBuilder) WithNotNeeded(record entities.NotNeededPackage) *DependencyGraphBuilder {
	b.notNeeded = append(b.notNeeded, record)
	return b
}

// Build creates the graph (satisfies testkit.Builder interface).
func (b *DependencyGraphBuilder) Build() interface{} {
	return b.BuildGraph()
}

// BuildGraph creates the graph with a concrete return type.
func (b *DependencyGraphBuilder) BuildGraph() *entities.DependencyGraph {
	return entities.NewDependencyGraph(b.entries, b.notNeeded)
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyGraphBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.entries = nil
	b.notNeeded = nil
	return b
}

// Clone creates a deep copy of the DependencyGraphBuilder.
func (b *DependencyGraphBuilder) Clone() testkit.Builder {
	return &DependencyGraphBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		entries:     append([]entities.DependencyGraphEntry(nil), b.entries...),
		notNeeded:   append([]entities.NotNeededPackage(nil), b.notNeeded...),
	}
}

// ParseIdentity turns "name", "name@2" or "name@2.1" into an identity.
func ParseIdentity(spec string) entities.PackageIdentity {
	for i := len(spec) - 1; i > 0; i-- {
		if spec[i] != '@' {
			continue
		}
		if version, ok := entities.ParseVersionSegment("v" + spec[i+1:]); ok {
			return entities.NewPackageIdentity(spec[:i], version)
		}
		break
	}
	return entities.NewPackageIdentity(spec, entities.Wildcard)
}
