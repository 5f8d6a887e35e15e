//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
)

// SpyRegistryRepository implements repositories.RegistryRepository with a
// table of published versions. It is safe for concurrent use.
type SpyRegistryRepository struct {
	// --- Resolve ---
	// Versions maps a package name to its versions. The "latest" entry, when
	// present, is returned for the "latest" tag.
	Versions map[string]map[string]string
	// Errs maps a package name to a fatal error returned for every lookup.
	Errs map[string]error
	// Delay is slept inside every lookup to make overlapping calls observable.
	Delay time.Duration

	mu       sync.Mutex
	calls    []ResolveCall
	inFlight atomic.Int32
	peak     atomic.Int32
}

// ResolveCall records a single invocation of Resolve.
type ResolveCall struct {
	Name           string
	VersionOrRange string
}

var _ repositories.RegistryRepository = (*SpyRegistryRepository)(nil)

func (s *SpyRegistryRepository) Resolve(
	ctx context.Context,
	name, versionOrRange string,
) (*entities.ManifestSummary, error) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if current <= peak || s.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, ResolveCall{Name: name, VersionOrRange: versionOrRange})
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := s.Errs[name]; ok {
		return nil, err
	}
	versions, ok := s.Versions[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, entities.ErrPackageNotFound)
	}
	version, ok := versions[versionOrRange]
	if !ok {
		return nil, fmt.Errorf("%s@%s: %w", name, versionOrRange, entities.ErrVersionNotFound)
	}
	return &entities.ManifestSummary{Name: name, Version: version}, nil
}

// Calls returns a copy of the recorded invocations.
func (s *SpyRegistryRepository) Calls() []ResolveCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ResolveCall(nil), s.calls...)
}

// PeakConcurrency returns the highest number of overlapping lookups seen.
func (s *SpyRegistryRepository) PeakConcurrency() int {
	return int(s.peak.Load())
}
