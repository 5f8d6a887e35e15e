package repositories

import (
	"context"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
)

// RegistryRepository resolves published packages on an external registry.
type RegistryRepository interface {
	// Resolve returns the manifest matching the version, range or dist-tag.
	// It returns entities.ErrPackageNotFound or entities.ErrVersionNotFound
	// (possibly wrapped) for missing data; any other error is fatal.
	Resolve(ctx context.Context, name, versionOrRange string) (*entities.ManifestSummary, error)
}
