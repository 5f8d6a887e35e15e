//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
)

// StubDiffRepository implements repositories.DiffRepository with canned events.
type StubDiffRepository struct {
	// --- identity ---
	SourceName string

	// --- Changes ---
	Events     []entities.FileChangeEvent
	ChangesErr error
	// spy: requests received
	Requests []repositories.DiffRequest

	// --- WorkTree ---
	// WorkTreeDir defaults to the request's RepoDir
	WorkTreeDir string
	WorkTreeErr error
}

var _ repositories.DiffRepository = (*StubDiffRepository)(nil)

func (s *StubDiffRepository) Name() string {
	if s.SourceName == "" {
		return "git"
	}
	return s.SourceName
}

func (s *StubDiffRepository) Changes(
	_ context.Context,
	req repositories.DiffRequest,
) ([]entities.FileChangeEvent, error) {
	s.Requests = append(s.Requests, req)
	return s.Events, s.ChangesErr
}

func (s *StubDiffRepository) WorkTree(
	_ context.Context,
	req repositories.DiffRequest,
) (string, error) {
	if s.WorkTreeErr != nil {
		return "", s.WorkTreeErr
	}
	if s.WorkTreeDir == "" {
		return req.RepoDir, nil
	}
	return s.WorkTreeDir, nil
}
