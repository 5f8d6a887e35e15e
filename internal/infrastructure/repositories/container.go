package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/monocheck/internal/domain/repositories"
	"github.com/rios0rios0/monocheck/internal/infrastructure/repositories/fsindex"
	"github.com/rios0rios0/monocheck/internal/infrastructure/repositories/gitdiff"
	"github.com/rios0rios0/monocheck/internal/infrastructure/repositories/npm"
	"github.com/rios0rios0/monocheck/internal/infrastructure/repositories/patchdiff"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register registry client registry with all client factories
	if err := container.Provide(func() *RegistryClientRegistry {
		reg := NewRegistryClientRegistry()
		reg.Register(npm.Kind, npm.NewRegistryRepository)
		return reg
	}); err != nil {
		return err
	}

	// Register diff source registry with all diff sources
	if err := container.Provide(func() *DiffSourceRegistry {
		reg := NewDiffSourceRegistry()
		reg.Register(gitdiff.NewDiffRepository())
		reg.Register(patchdiff.NewDiffRepository())
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(func() repositories.PackageIndexRepository {
		return fsindex.NewPackageIndexRepository()
	}); err != nil {
		return err
	}

	return nil
}
