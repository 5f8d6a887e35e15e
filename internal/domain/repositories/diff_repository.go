package repositories

import (
	"context"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
)

// DiffRequest selects the change-set to extract from a repository.
type DiffRequest struct {
	RepoDir string
	Base    string // revision the change is compared against
	Head    string // revision holding the proposed change
	Patch   string // unified diff file, "-" for stdin
}

// DiffRepository abstracts where file-level changes come from (a Git object
// database, a patch file, etc.). Events are returned in diff order.
type DiffRepository interface {
	// Name returns the diff source identifier (e.g. "git", "patch").
	Name() string

	// Changes returns the ordered file events between the requested revisions.
	Changes(ctx context.Context, req DiffRequest) ([]entities.FileChangeEvent, error)

	// WorkTree returns the directory whose files are the snapshot the events
	// lead to. Diff paths are relative to it.
	WorkTree(ctx context.Context, req DiffRequest) (string, error)
}
