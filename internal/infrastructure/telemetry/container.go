package telemetry

import (
	"go.uber.org/dig"
)

// RegisterProviders registers the metrics providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	return container.Provide(NewPipelineMetrics)
}
