//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
)

// StubPackageIndexRepository implements repositories.PackageIndexRepository
// by returning a prebuilt graph.
type StubPackageIndexRepository struct {
	Graph     *entities.DependencyGraph
	LoadErr   error
	LoadCalls   int
	LastRepoDir string
	LastRoot    string
}

var _ repositories.PackageIndexRepository = (*StubPackageIndexRepository)(nil)

func (s *StubPackageIndexRepository) Load(
	_ context.Context,
	repoDir, root, _ string,
) (*entities.DependencyGraph, error) {
	s.LoadCalls++
	s.LastRepoDir = repoDir
	s.LastRoot = root
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.Graph == nil {
		return entities.NewDependencyGraph(nil, nil), nil
	}
	return s.Graph, nil
}
