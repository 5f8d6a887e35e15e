package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(NewAffectedCommand); err != nil {
		return err
	}
	if err := container.Provide(NewDeprecationsCommand); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *AffectedCommand) Affected {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *DeprecationsCommand) Deprecations {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
