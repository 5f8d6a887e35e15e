package commands

import (
	"context"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/monocheck/internal/infrastructure/repositories"
	"github.com/rios0rios0/monocheck/internal/infrastructure/telemetry"
)

// Affected is the interface for the affected command (full pipeline).
type Affected interface {
	Execute(ctx context.Context, settings *entities.Settings, opts AffectedOptions) (*entities.AffectedResult, error)
}

// AffectedOptions holds runtime options for a single pipeline run.
type AffectedOptions struct {
	DiffOptions
	Verbose     bool
	MetricsFile string // if set, metrics are written here after the run
}

// AffectedCommand orchestrates the change pipeline:
// diff -> classify -> validate deprecations -> resolve affected packages.
type AffectedCommand struct {
	loader          changeLoader
	registryClients *infraRepos.RegistryClientRegistry
	metrics         *telemetry.PipelineMetrics
}

// NewAffectedCommand creates a new AffectedCommand.
func NewAffectedCommand(
	diffSources *infraRepos.DiffSourceRegistry,
	indexRepository repositories.PackageIndexRepository,
	registryClients *infraRepos.RegistryClientRegistry,
	metrics *telemetry.PipelineMetrics,
) *AffectedCommand {
	return &AffectedCommand{
		loader:          changeLoader{diffSources: diffSources, indexRepository: indexRepository},
		registryClients: registryClients,
		metrics:         metrics,
	}
}

// Execute runs the pipeline. Structural problems come back as the error
// variant of the result; the returned error is reserved for fatal failures
// such as an unreadable repository or an unreachable registry.
func (it *AffectedCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts AffectedOptions,
) (*entities.AffectedResult, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	defer it.flushMetrics(opts.MetricsFile)

	log := logger.WithField("run", uuid.NewString())

	loaded, err := it.loader.load(ctx, settings, opts.DiffOptions, log)
	if err != nil {
		return nil, err
	}
	log = log.WithField("snapshot", loaded.Snapshot)
	it.metrics.ObserveFileEvents(len(loaded.PackageEvents))

	if loaded.Classified.IsError() {
		it.metrics.ObserveStructuralErrors(telemetry.StageClassify, len(loaded.Classified.Errors))
		log.Warnf("Change-set rejected with %d structural errors", len(loaded.Classified.Errors))
		return entities.NewAffectedErrors(loaded.Classified.Errors), nil
	}
	changes := loaded.Classified.Changes

	var errs []string
	if entities.TouchesPath(loaded.Events, settings.DeprecationManifest) {
		log.Infof("%s changed, validating deprecations", settings.DeprecationManifest)

		registry, registryErr := it.registryClients.Get(settings.Registry.Kind, settings.Registry)
		if registryErr != nil {
			return nil, registryErr
		}

		deprecationErrs, validateErr := ValidateDeprecations(ctx, DeprecationContext{
			Index:       loaded.Graph,
			Registry:    it.metrics.InstrumentRegistry(registry),
			Concurrency: settings.Registry.Concurrency,
		}, changes)
		if validateErr != nil {
			return nil, validateErr
		}
		it.metrics.ObserveStructuralErrors(telemetry.StageDeprecations, len(deprecationErrs))
		errs = append(errs, deprecationErrs...)
	}

	if len(errs) > 0 {
		log.Warnf("Change-set rejected with %d deprecation errors", len(errs))
		return entities.NewAffectedErrors(errs), nil
	}

	result := ResolveAffected(changes, loaded.Graph, loaded.Snapshot)
	it.metrics.ObserveAffected(result)

	for _, warning := range result.Warnings {
		log.Warn(warning)
	}
	log.Infof(
		"Run complete: %d packages changed, %d dependents affected",
		len(result.PackageNames), len(result.Dependents),
	)
	return result, nil
}

func (it *AffectedCommand) flushMetrics(path string) {
	if path == "" {
		return
	}
	if err := it.metrics.WriteTextfile(path); err != nil {
		logger.Errorf("Failed to write metrics: %v", err)
	}
}
