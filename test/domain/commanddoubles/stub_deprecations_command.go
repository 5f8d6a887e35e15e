//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/monocheck/internal/domain/commands"
	"github.com/rios0rios0/monocheck/internal/domain/entities"
)

// StubDeprecationsCommand is a stub implementation of commands.Deprecations.
type StubDeprecationsCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Errors           []string
	LastOpts         commands.DiffOptions
}

var _ commands.Deprecations = (*StubDeprecationsCommand)(nil)

func (s *StubDeprecationsCommand) Execute(
	_ context.Context,
	_ *entities.Settings,
	opts commands.DiffOptions,
) ([]string, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.Errors, s.ExecuteErr
}
