//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/monocheck/internal/domain/commands"
	"github.com/rios0rios0/monocheck/internal/domain/entities"
)

// StubAffectedCommand is a stub implementation of commands.Affected.
type StubAffectedCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Result           *entities.AffectedResult
	LastSettings     *entities.Settings
	LastOpts         commands.AffectedOptions
}

var _ commands.Affected = (*StubAffectedCommand)(nil)

func (s *StubAffectedCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.AffectedOptions,
) (*entities.AffectedResult, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	if s.ExecuteErr != nil {
		return nil, s.ExecuteErr
	}
	if s.Result == nil {
		return &entities.AffectedResult{}, nil
	}
	return s.Result, nil
}
