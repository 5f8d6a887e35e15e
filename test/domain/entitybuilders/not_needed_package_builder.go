//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
)

// NotNeededPackageBuilder helps create deprecation records with a fluent interface.
type NotNeededPackageBuilder struct {
	*testkit.BaseBuilder
	name        string
	libraryName string
	version     string
}

// NewNotNeededPackageBuilder creates a new builder with sensible defaults.
func NewNotNeededPackageBuilder() *NotNeededPackageBuilder {
	return &NotNeededPackageBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "test-package",
		libraryName: "test-package",
		version:     "1.0.0",
	}
}

// WithName sets the typings directory name.
func (b *NotNeededPackageBuilder) WithName(name string) *NotNeededPackageBuilder {
	b.name = name
	return b
}

// WithLibraryName sets the npm name of the library shipping its own types.
func (b *NotNeededPackageBuilder) WithLibraryName(libraryName string) *NotNeededPackageBuilder {
	b.libraryName = libraryName
	return b
}

// WithVersion sets the first library version that ships its own types.
func (b *NotNeededPackageBuilder) WithVersion(version string) *NotNeededPackageBuilder {
	b.version = version
	return b
}

// Build creates the record (satisfies testkit.Builder interface).
func (b *NotNeededPackageBuilder) Build() interface{} {
	return b.BuildNotNeededPackage()
}

// BuildNotNeededPackage creates the record with a concrete return type. It
// bypasses validation so tests can build invalid records too.
func (b *NotNeededPackageBuilder) BuildNotNeededPackage() entities.NotNeededPackage {
	return entities.NotNeededPackage{
		Name:        b.name,
		LibraryName: b.libraryName,
		Version:     b.version,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *NotNeededPackageBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "test-package"
	b.libraryName = "test-package"
	b.version = "1.0.0"
	return b
}

// Clone creates a deep copy of the NotNeededPackageBuilder.
func (b *NotNeededPackageBuilder) Clone() testkit.Builder {
	return &NotNeededPackageBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:        b.name,
		libraryName: b.libraryName,
		version:     b.version,
	}
}
