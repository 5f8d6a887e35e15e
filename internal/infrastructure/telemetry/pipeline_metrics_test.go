//go:build unit

package telemetry_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/infrastructure/telemetry"
	doubles "github.com/rios0rios0/monocheck/test/infrastructure/repositorydoubles"
)

func TestPipelineMetrics(t *testing.T) {
	t.Parallel()

	t.Run("should count registry lookups by outcome", func(t *testing.T) {
		t.Parallel()

		// given
		metrics := telemetry.NewPipelineMetrics()
		registry := metrics.InstrumentRegistry(&doubles.SpyRegistryRepository{
			Versions: map[string]map[string]string{"lib-bar": {"2.0.0": "2.0.0"}},
			Errs:     map[string]error{"broken": errors.New("boom")},
		})
		ctx := context.Background()

		// when
		_, _ = registry.Resolve(ctx, "lib-bar", "2.0.0")
		_, _ = registry.Resolve(ctx, "lib-bar", "9.9.9")
		_, _ = registry.Resolve(ctx, "missing", "latest")
		_, _ = registry.Resolve(ctx, "broken", "latest")

		// then
		expected := `
# HELP monocheck_registry_lookups_total Registry resolve calls, by outcome.
# TYPE monocheck_registry_lookups_total counter
monocheck_registry_lookups_total{outcome="failed"} 1
monocheck_registry_lookups_total{outcome="found"} 1
monocheck_registry_lookups_total{outcome="package_not_found"} 1
monocheck_registry_lookups_total{outcome="version_not_found"} 1
`
		require.NoError(t, testutil.GatherAndCompare(
			metrics.Gatherer(), strings.NewReader(expected), "monocheck_registry_lookups_total",
		))
	})

	t.Run("should pass results through the instrumented registry unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		metrics := telemetry.NewPipelineMetrics()
		registry := metrics.InstrumentRegistry(&doubles.SpyRegistryRepository{})

		// when
		summary, err := registry.Resolve(context.Background(), "missing", "latest")

		// then
		require.ErrorIs(t, err, entities.ErrPackageNotFound)
		assert.Nil(t, summary)
	})

	t.Run("should record the size of an affected result", func(t *testing.T) {
		t.Parallel()

		// given
		metrics := telemetry.NewPipelineMetrics()
		result := &entities.AffectedResult{
			PackageNames: map[string]struct{}{"c": {}},
			Dependents:   map[string]struct{}{"a": {}, "b": {}},
			Warnings:     []string{"a depends on gone@*, which does not exist"},
		}

		// when
		metrics.ObserveFileEvents(3)
		metrics.ObserveStructuralErrors(telemetry.StageClassify, 2)
		metrics.ObserveAffected(result)

		// then
		expected := `
# HELP monocheck_dependent_packages Packages that transitively depend on a changed package.
# TYPE monocheck_dependent_packages gauge
monocheck_dependent_packages 2
# HELP monocheck_file_events_total File events inside the package area passed to the classifier.
# TYPE monocheck_file_events_total counter
monocheck_file_events_total 3
# HELP monocheck_structural_errors_total Structural errors reported, by pipeline stage.
# TYPE monocheck_structural_errors_total counter
monocheck_structural_errors_total{stage="classify"} 2
`
		require.NoError(t, testutil.GatherAndCompare(
			metrics.Gatherer(), strings.NewReader(expected),
			"monocheck_dependent_packages", "monocheck_file_events_total", "monocheck_structural_errors_total",
		))
	})

	t.Run("should write a textfile", func(t *testing.T) {
		t.Parallel()

		// given
		metrics := telemetry.NewPipelineMetrics()
		metrics.ObserveFileEvents(5)
		path := filepath.Join(t.TempDir(), "monocheck.prom")

		// when
		err := metrics.WriteTextfile(path)

		// then
		require.NoError(t, err)
		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Contains(t, string(data), "monocheck_file_events_total 5")
	})

	t.Run("should fail to write into a missing directory", func(t *testing.T) {
		t.Parallel()

		// given
		metrics := telemetry.NewPipelineMetrics()

		// when
		err := metrics.WriteTextfile(filepath.Join(t.TempDir(), "missing", "monocheck.prom"))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write metrics")
	})
}
