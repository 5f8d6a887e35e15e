package repositories

import (
	"context"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
)

// PackageIndex is the read-only view of the monorepo packages the pipeline
// queries. entities.DependencyGraph is the canonical implementation.
type PackageIndex interface {
	Exists(id entities.PackageIdentity) bool
	HasTypings(directoryName string) bool
	DependenciesOf(directoryName string) []entities.PackageIdentity
	DependentsOf(directoryName string) []string
	IsDeprecated(directoryName string) bool
	NotNeededPackage(directoryName string) (entities.NotNeededPackage, bool)
}

// PackageIndexRepository builds the package index of a checkout.
type PackageIndexRepository interface {
	// Load reads every package under root and the deprecation manifest. The
	// returned graph is complete and never mutated afterwards.
	Load(ctx context.Context, repoDir, root, manifest string) (*entities.DependencyGraph, error)
}
