// Package telemetry records pipeline metrics in a private Prometheus registry
// and writes them in the node-exporter textfile format at the end of a run.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
)

const (
	namespace = "monocheck"

	OutcomeFound           = "found"
	OutcomePackageNotFound = "package_not_found"
	OutcomeVersionNotFound = "version_not_found"
	OutcomeFailed          = "failed"

	StageClassify     = "classify"
	StageDeprecations = "deprecations"
)

// PipelineMetrics holds the collectors of one monocheck process.
type PipelineMetrics struct {
	registry          *prometheus.Registry
	fileEvents        prometheus.Counter
	structuralErrors  *prometheus.CounterVec
	registryLookups   *prometheus.CounterVec
	changedPackages   prometheus.Gauge
	dependentPackages prometheus.Gauge
	warnings          prometheus.Gauge
}

// NewPipelineMetrics creates and registers every collector.
func NewPipelineMetrics() *PipelineMetrics {
	m := &PipelineMetrics{
		registry: prometheus.NewRegistry(),
		fileEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_events_total",
			Help:      "File events inside the package area passed to the classifier.",
		}),
		structuralErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "structural_errors_total",
			Help:      "Structural errors reported, by pipeline stage.",
		}, []string{"stage"}),
		registryLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_lookups_total",
			Help:      "Registry resolve calls, by outcome.",
		}, []string{"outcome"}),
		changedPackages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "changed_packages",
			Help:      "Packages directly added or deleted by the change-set.",
		}),
		dependentPackages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dependent_packages",
			Help:      "Packages that transitively depend on a changed package.",
		}),
		warnings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dangling_dependency_warnings",
			Help:      "Dependencies on packages missing from the index.",
		}),
	}

	m.registry.MustRegister(
		m.fileEvents,
		m.structuralErrors,
		m.registryLookups,
		m.changedPackages,
		m.dependentPackages,
		m.warnings,
	)
	return m
}

// Gatherer exposes the private registry.
func (m *PipelineMetrics) Gatherer() prometheus.Gatherer { return m.registry }

func (m *PipelineMetrics) ObserveFileEvents(count int) {
	m.fileEvents.Add(float64(count))
}

func (m *PipelineMetrics) ObserveStructuralErrors(stage string, count int) {
	m.structuralErrors.WithLabelValues(stage).Add(float64(count))
}

// ObserveAffected records the size of a successful result.
func (m *PipelineMetrics) ObserveAffected(result *entities.AffectedResult) {
	m.changedPackages.Set(float64(len(result.PackageNames)))
	m.dependentPackages.Set(float64(len(result.Dependents)))
	m.warnings.Set(float64(len(result.Warnings)))
}

// WriteTextfile writes the current values to path atomically.
func (m *PipelineMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %q: %w", path, err)
	}
	return nil
}

// InstrumentRegistry wraps a registry client so every Resolve call is
// counted by outcome.
func (m *PipelineMetrics) InstrumentRegistry(inner repositories.RegistryRepository) repositories.RegistryRepository {
	return &instrumentedRegistry{inner: inner, lookups: m.registryLookups}
}

type instrumentedRegistry struct {
	inner   repositories.RegistryRepository
	lookups *prometheus.CounterVec
}

func (r *instrumentedRegistry) Resolve(
	ctx context.Context, name, versionOrRange string,
) (*entities.ManifestSummary, error) {
	summary, err := r.inner.Resolve(ctx, name, versionOrRange)

	outcome := OutcomeFound
	switch {
	case errors.Is(err, entities.ErrPackageNotFound):
		outcome = OutcomePackageNotFound
	case errors.Is(err, entities.ErrVersionNotFound):
		outcome = OutcomeVersionNotFound
	case err != nil:
		outcome = OutcomeFailed
	}
	r.lookups.WithLabelValues(outcome).Inc()

	return summary, err
}
