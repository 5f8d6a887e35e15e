//go:build unit

package commands_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/monocheck/internal/domain/commands"
	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/monocheck/internal/infrastructure/repositories"
	"github.com/rios0rios0/monocheck/internal/infrastructure/telemetry"
	"github.com/rios0rios0/monocheck/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/monocheck/test/infrastructure/repositorydoubles"
)

type pipelineFixture struct {
	diff     *doubles.StubDiffRepository
	index    *doubles.StubPackageIndexRepository
	registry *doubles.SpyRegistryRepository
	metrics  *telemetry.PipelineMetrics
}

func newPipelineFixture(events []entities.FileChangeEvent, graph *entities.DependencyGraph) *pipelineFixture {
	return &pipelineFixture{
		diff:     &doubles.StubDiffRepository{Events: events},
		index:    &doubles.StubPackageIndexRepository{Graph: graph},
		registry: &doubles.SpyRegistryRepository{},
		metrics:  telemetry.NewPipelineMetrics(),
	}
}

func (f *pipelineFixture) diffSources() *infraRepos.DiffSourceRegistry {
	reg := infraRepos.NewDiffSourceRegistry()
	reg.Register(f.diff)
	return reg
}

func (f *pipelineFixture) registryClients() *infraRepos.RegistryClientRegistry {
	reg := infraRepos.NewRegistryClientRegistry()
	reg.Register("npm", func(_ entities.RegistrySettings) repositories.RegistryRepository {
		return f.registry
	})
	return reg
}

func (f *pipelineFixture) affected() *commands.AffectedCommand {
	return commands.NewAffectedCommand(f.diffSources(), f.index, f.registryClients(), f.metrics)
}

func TestAffectedCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should return the changed packages and their dependents", func(t *testing.T) {
		t.Parallel()

		// given
		graph := entitybuilders.NewDependencyGraphBuilder().
			WithPackage("a", "b").
			WithPackage("b", "c").
			WithPackage("c").
			BuildGraph()
		fixture := newPipelineFixture([]entities.FileChangeEvent{
			entities.NewAdded("types/c/c-tests.ts"),
			entities.NewModified("README.md"),
		}, graph)

		// when
		result, err := fixture.affected().Execute(context.Background(), entities.DefaultSettings(), commands.AffectedOptions{})

		// then
		require.NoError(t, err)
		assert.False(t, result.IsError())
		assert.Equal(t, []string{"c"}, result.SortedPackageNames())
		assert.Equal(t, []string{"a", "b"}, result.SortedDependents())
		assert.Equal(t, "origin/master", fixture.diff.Requests[0].Base)
		assert.Equal(t, "HEAD", fixture.diff.Requests[0].Head)
		assert.Equal(t, "types", fixture.index.LastRoot)
	})

	t.Run("should let options override the configured revisions", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newPipelineFixture(nil, nil)

		// when
		_, err := fixture.affected().Execute(context.Background(), entities.DefaultSettings(), commands.AffectedOptions{
			DiffOptions: commands.DiffOptions{Base: "main", Head: "feature"},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, "main", fixture.diff.Requests[0].Base)
		assert.Equal(t, "feature", fixture.diff.Requests[0].Head)
	})

	t.Run("should stop at structural errors before resolving dependents", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newPipelineFixture([]entities.FileChangeEvent{
			entities.NewAdded("types/README.md"),
			entities.NewAdded("types/foo/index.d.ts"),
		}, nil)

		// when
		result, err := fixture.affected().Execute(context.Background(), entities.DefaultSettings(), commands.AffectedOptions{})

		// then
		require.NoError(t, err)
		assert.True(t, result.IsError())
		assert.Equal(t, []string{"unexpected file added: types/README.md"}, result.Errors)
		assert.Nil(t, result.PackageNames)
	})

	t.Run("should validate deprecations when the manifest changed", func(t *testing.T) {
		t.Parallel()

		// given
		graph := entitybuilders.NewDependencyGraphBuilder().
			WithPackage("foo").
			WithNotNeeded(notNeeded("bar", "lib-bar", "2.0.0")).
			BuildGraph()
		fixture := newPipelineFixture([]entities.FileChangeEvent{
			entities.NewModified("notNeededPackages.json"),
			entities.NewDeleted("types/bar/index.d.ts"),
		}, graph)
		fixture.registry.Versions = map[string]map[string]string{
			"lib-bar":    {"2.0.0": "2.0.0"},
			"@types/bar": {"latest": "2.1.0"},
		}

		// when
		result, err := fixture.affected().Execute(context.Background(), entities.DefaultSettings(), commands.AffectedOptions{})

		// then
		require.NoError(t, err)
		require.True(t, result.IsError())
		assert.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "2.0.0 of lib-bar must be newer")
		assert.Len(t, fixture.registry.Calls(), 2)
		count, countErr := testutil.GatherAndCount(fixture.metrics.Gatherer(), "monocheck_registry_lookups_total")
		require.NoError(t, countErr)
		assert.Equal(t, 1, count)
	})

	t.Run("should skip the registry when the manifest did not change", func(t *testing.T) {
		t.Parallel()

		// given
		graph := entitybuilders.NewDependencyGraphBuilder().
			WithNotNeeded(notNeeded("bar", "lib-bar", "2.0.0")).
			BuildGraph()
		fixture := newPipelineFixture([]entities.FileChangeEvent{
			entities.NewDeleted("types/bar/index.d.ts"),
		}, graph)

		// when
		result, err := fixture.affected().Execute(context.Background(), entities.DefaultSettings(), commands.AffectedOptions{})

		// then
		require.NoError(t, err)
		assert.False(t, result.IsError())
		assert.Equal(t, []string{"bar"}, result.SortedPackageNames())
		assert.Empty(t, fixture.registry.Calls())
	})

	t.Run("should propagate a fatal registry failure", func(t *testing.T) {
		t.Parallel()

		// given
		boom := errors.New("registry unreachable")
		graph := entitybuilders.NewDependencyGraphBuilder().
			WithNotNeeded(notNeeded("bar", "lib-bar", "2.0.0")).
			BuildGraph()
		fixture := newPipelineFixture([]entities.FileChangeEvent{
			entities.NewModified("notNeededPackages.json"),
			entities.NewDeleted("types/bar/index.d.ts"),
		}, graph)
		fixture.registry.Errs = map[string]error{"lib-bar": boom}

		// when
		result, err := fixture.affected().Execute(context.Background(), entities.DefaultSettings(), commands.AffectedOptions{})

		// then
		require.ErrorIs(t, err, boom)
		assert.Nil(t, result)
	})

	t.Run("should propagate a diff failure", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newPipelineFixture(nil, nil)
		fixture.diff.ChangesErr = errors.New("bad revision")

		// when
		result, err := fixture.affected().Execute(context.Background(), entities.DefaultSettings(), commands.AffectedOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read changes from git")
		assert.Nil(t, result)
		assert.Zero(t, fixture.index.LoadCalls)
	})

	t.Run("should fail on an unknown diff source", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newPipelineFixture(nil, nil)

		// when
		_, err := fixture.affected().Execute(context.Background(), entities.DefaultSettings(), commands.AffectedOptions{
			DiffOptions: commands.DiffOptions{Source: "svn"},
		})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown diff source")
	})

	t.Run("should write metrics to the requested file", func(t *testing.T) {
		t.Parallel()

		// given
		graph := entitybuilders.NewDependencyGraphBuilder().WithPackage("a").BuildGraph()
		fixture := newPipelineFixture([]entities.FileChangeEvent{entities.NewAdded("types/a/index.d.ts")}, graph)
		metricsFile := filepath.Join(t.TempDir(), "monocheck.prom")

		// when
		_, err := fixture.affected().Execute(context.Background(), entities.DefaultSettings(), commands.AffectedOptions{
			MetricsFile: metricsFile,
		})

		// then
		require.NoError(t, err)
		data, readErr := os.ReadFile(metricsFile)
		require.NoError(t, readErr)
		assert.Contains(t, string(data), "monocheck_changed_packages 1")
		assert.Contains(t, string(data), "monocheck_file_events_total 1")
	})

	t.Run("should load the package index from the diff source worktree", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newPipelineFixture([]entities.FileChangeEvent{entities.NewAdded("types/c/index.d.ts")},
			entitybuilders.NewDependencyGraphBuilder().WithPackage("c").BuildGraph())
		fixture.diff.WorkTreeDir = "/checkout"

		// when
		_, err := fixture.affected().Execute(context.Background(), entities.DefaultSettings(), commands.AffectedOptions{
			DiffOptions: commands.DiffOptions{RepoDir: "/checkout/types"},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, "/checkout/types", fixture.diff.Requests[0].RepoDir)
		assert.Equal(t, "/checkout", fixture.index.LastRepoDir)
	})

	t.Run("should not index a checkout holding another revision", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newPipelineFixture([]entities.FileChangeEvent{entities.NewAdded("types/c/index.d.ts")}, nil)
		fixture.diff.WorkTreeErr = errors.New("head revision is not checked out")

		// when
		result, err := fixture.affected().Execute(context.Background(), entities.DefaultSettings(), commands.AffectedOptions{
			DiffOptions: commands.DiffOptions{Head: "feature"},
		})

		// then
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "failed to locate the files of feature")
		assert.Zero(t, fixture.index.LoadCalls)
	})
}

func TestDeprecationsCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should validate deprecations even without a manifest change", func(t *testing.T) {
		t.Parallel()

		// given
		graph := entitybuilders.NewDependencyGraphBuilder().
			WithNotNeeded(notNeeded("bar", "lib-bar", "2.0.0")).
			BuildGraph()
		fixture := newPipelineFixture([]entities.FileChangeEvent{
			entities.NewDeleted("types/bar/index.d.ts"),
		}, graph)
		fixture.registry.Versions = map[string]map[string]string{
			"lib-bar":    {"2.0.0": "2.0.0"},
			"@types/bar": {"latest": "1.0.0"},
		}
		cmd := commands.NewDeprecationsCommand(fixture.diffSources(), fixture.index, fixture.registryClients())

		// when
		errs, err := cmd.Execute(context.Background(), entities.DefaultSettings(), commands.DiffOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, errs)
		assert.Len(t, fixture.registry.Calls(), 2)
	})

	t.Run("should return structural errors without querying the registry", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newPipelineFixture([]entities.FileChangeEvent{
			entities.NewDeleted("types/stray.txt"),
		}, nil)
		cmd := commands.NewDeprecationsCommand(fixture.diffSources(), fixture.index, fixture.registryClients())

		// when
		errs, err := cmd.Execute(context.Background(), entities.DefaultSettings(), commands.DiffOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"unexpected file deleted: types/stray.txt"}, errs)
		assert.Empty(t, fixture.registry.Calls())
	})

	t.Run("should fail on an unknown registry kind", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newPipelineFixture(nil, nil)
		settings := entities.DefaultSettings()
		settings.Registry.Kind = "pypi"
		cmd := commands.NewDeprecationsCommand(fixture.diffSources(), fixture.index, fixture.registryClients())

		// when
		_, err := cmd.Execute(context.Background(), settings, commands.DiffOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown registry kind")
	})
}
