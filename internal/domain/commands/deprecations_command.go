package commands

import (
	"context"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/monocheck/internal/infrastructure/repositories"
)

// Deprecations is the interface for the deprecations command.
type Deprecations interface {
	Execute(ctx context.Context, settings *entities.Settings, opts DiffOptions) ([]string, error)
}

// DeprecationsCommand validates the deprecation records of a change-set
// without resolving dependents. Unlike the full pipeline it always runs,
// whether or not the deprecation manifest was touched.
type DeprecationsCommand struct {
	loader          changeLoader
	registryClients *infraRepos.RegistryClientRegistry
}

// NewDeprecationsCommand creates a new DeprecationsCommand.
func NewDeprecationsCommand(
	diffSources *infraRepos.DiffSourceRegistry,
	indexRepository repositories.PackageIndexRepository,
	registryClients *infraRepos.RegistryClientRegistry,
) *DeprecationsCommand {
	return &DeprecationsCommand{
		loader:          changeLoader{diffSources: diffSources, indexRepository: indexRepository},
		registryClients: registryClients,
	}
}

// Execute returns the structural errors of the change-set; an empty slice
// means every deprecation edit is valid.
func (it *DeprecationsCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts DiffOptions,
) ([]string, error) {
	log := logger.WithField("run", uuid.NewString())

	loaded, err := it.loader.load(ctx, settings, opts, log)
	if err != nil {
		return nil, err
	}
	if loaded.Classified.IsError() {
		return loaded.Classified.Errors, nil
	}

	registry, err := it.registryClients.Get(settings.Registry.Kind, settings.Registry)
	if err != nil {
		return nil, err
	}

	errs, err := ValidateDeprecations(ctx, DeprecationContext{
		Index:       loaded.Graph,
		Registry:    registry,
		Concurrency: settings.Registry.Concurrency,
	}, loaded.Classified.Changes)
	if err != nil {
		return nil, err
	}

	log.WithField("snapshot", loaded.Snapshot).Infof("Deprecation check complete: %d errors", len(errs))
	return errs, nil
}
