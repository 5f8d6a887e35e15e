package commands

import (
	"context"
	"fmt"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/monocheck/internal/infrastructure/repositories"
)

// DiffOptions selects the change-set to evaluate. Empty fields fall back to
// the diff settings.
type DiffOptions struct {
	RepoDir string
	Source  string
	Base    string
	Head    string
	Patch   string
}

// loadedChanges is everything the pipeline stages need from one checkout.
type loadedChanges struct {
	Events        []entities.FileChangeEvent
	PackageEvents []entities.FileChangeEvent
	Graph         *entities.DependencyGraph
	Classified    entities.ClassifyResult
	Snapshot      string
}

// changeLoader extracts the diff, builds the package index and classifies
// the events of the package area.
type changeLoader struct {
	diffSources     *infraRepos.DiffSourceRegistry
	indexRepository repositories.PackageIndexRepository
}

func (l changeLoader) load(
	ctx context.Context,
	settings *entities.Settings,
	opts DiffOptions,
	log *logger.Entry,
) (*loadedChanges, error) {
	repoDir, err := filepath.Abs(opts.RepoDir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	req := repositories.DiffRequest{
		RepoDir: repoDir,
		Base:    firstNonEmpty(opts.Base, settings.Diff.Base),
		Head:    firstNonEmpty(opts.Head, settings.Diff.Head),
		Patch:   firstNonEmpty(opts.Patch, settings.Diff.Patch),
	}
	sourceName := firstNonEmpty(opts.Source, settings.Diff.Source)

	source, err := l.diffSources.Get(sourceName)
	if err != nil {
		return nil, err
	}

	events, err := source.Changes(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to read changes from %s: %w", sourceName, err)
	}
	log.Infof("Read %d file changes from %s", len(events), sourceName)

	workTree, err := source.WorkTree(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to locate the files of %s: %w", req.Head, err)
	}
	if workTree != repoDir {
		log.Debugf("Reading packages from %s", workTree)
	}

	graph, err := l.indexRepository.Load(ctx, workTree, settings.PackageRoot, settings.DeprecationManifest)
	if err != nil {
		return nil, fmt.Errorf("failed to load package index: %w", err)
	}

	packageEvents := FilterPackageArea(settings.PackageRoot, events)
	log.Debugf("%d of %d file changes are inside %s/", len(packageEvents), len(events), settings.PackageRoot)

	return &loadedChanges{
		Events:        events,
		PackageEvents: packageEvents,
		Graph:         graph,
		Classified:    ClassifyChanges(settings.PackageRoot, packageEvents),
		Snapshot:      snapshotName(sourceName, req),
	}, nil
}

func snapshotName(source string, req repositories.DiffRequest) string {
	if source == "patch" {
		return "patch:" + req.Patch
	}
	return req.Base + "..." + req.Head
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
