package gitdiff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
)

const (
	sourceName   = "git"
	remotePrefix = "origin/"
	defaultHead  = "HEAD"
)

// ErrHeadNotCheckedOut is returned when the files on disk belong to another
// commit than the head revision being diffed.
var ErrHeadNotCheckedOut = errors.New("head revision is not checked out")

// GitDiffRepository implements repositories.DiffRepository on top of the Git
// object database of a local checkout. It compares the merge base of the
// base and head revisions with the head tree, with rename detection.
type GitDiffRepository struct{}

// NewDiffRepository creates a new Git diff source.
func NewDiffRepository() repositories.DiffRepository {
	return &GitDiffRepository{}
}

func (r *GitDiffRepository) Name() string { return sourceName }

// Changes opens the repository containing req.RepoDir and diffs it.
func (r *GitDiffRepository) Changes(
	ctx context.Context,
	req repositories.DiffRequest,
) ([]entities.FileChangeEvent, error) {
	repo, err := openRepository(req.RepoDir)
	if err != nil {
		return nil, err
	}
	return changesBetween(ctx, repo, req.Base, headRevision(req))
}

// WorkTree returns the root of the working tree containing req.RepoDir. The
// head revision must be the commit checked out there.
func (r *GitDiffRepository) WorkTree(
	_ context.Context,
	req repositories.DiffRequest,
) (string, error) {
	repo, err := openRepository(req.RepoDir)
	if err != nil {
		return "", err
	}
	return checkedOutRoot(repo, headRevision(req))
}

func openRepository(dir string) (*git.Repository, error) {
	//nolint:exhaustruct // Minimal PlainOpenOptions initialization with required fields only
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}
	return repo, nil
}

func headRevision(req repositories.DiffRequest) string {
	if req.Head == "" {
		return defaultHead
	}
	return req.Head
}

// checkedOutRoot returns the worktree root when head resolves to the commit
// at HEAD, and ErrHeadNotCheckedOut otherwise.
func checkedOutRoot(repo *git.Repository, head string) (string, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}
	root := worktree.Filesystem.Root()

	headCommit, err := resolveCommit(repo, head)
	if err != nil {
		return "", err
	}
	current, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if current.Hash() != headCommit.Hash {
		return "", fmt.Errorf("%w: %s is %s but %s has %s checked out",
			ErrHeadNotCheckedOut, head, headCommit.Hash, root, current.Hash())
	}

	logger.Debugf("[gitdiff] %s is checked out at %s", head, root)
	return root, nil
}

// changesBetween returns the file events that turn the merge base of base
// and head into head.
func changesBetween(
	ctx context.Context,
	repo *git.Repository,
	base, head string,
) ([]entities.FileChangeEvent, error) {
	headCommit, err := resolveCommit(repo, head)
	if err != nil {
		return nil, err
	}
	baseCommit, err := resolveBaseCommit(repo, base)
	if err != nil {
		return nil, err
	}

	fromCommit := mergeBaseOrTip(baseCommit, headCommit)

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", fromCommit.Hash, err)
	}
	toTree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", headCommit.Hash, err)
	}

	changes, err := object.DiffTreeWithOptions(ctx, fromTree, toTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..%s: %w", fromCommit.Hash, headCommit.Hash, err)
	}

	events := make([]entities.FileChangeEvent, 0, len(changes))
	for _, change := range changes {
		event, eventErr := toEvent(change)
		if eventErr != nil {
			return nil, eventErr
		}
		events = append(events, event)
	}

	logger.Debugf("[gitdiff] %d changes between %s and %s", len(events), fromCommit.Hash, headCommit.Hash)
	return events, nil
}

// resolveBaseCommit resolves the base revision, falling back to the local
// branch when a remote-tracking ref such as "origin/master" was never fetched.
func resolveBaseCommit(repo *git.Repository, base string) (*object.Commit, error) {
	commit, err := resolveCommit(repo, base)
	if err == nil {
		return commit, nil
	}

	if local, isRemote := strings.CutPrefix(base, remotePrefix); isRemote {
		logger.Warnf("[gitdiff] %s is not available, falling back to %s", base, local)
		return resolveCommit(repo, local)
	}
	return nil, err
}

func resolveCommit(repo *git.Repository, revision string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	return commit, nil
}

// mergeBaseOrTip returns the best common ancestor of base and head. With a
// shallow history the ancestry is incomplete; the base tip is used instead.
func mergeBaseOrTip(base, head *object.Commit) *object.Commit {
	bases, err := base.MergeBase(head)
	if err != nil || len(bases) == 0 {
		if err != nil && !errors.Is(err, plumbing.ErrObjectNotFound) {
			logger.Warnf("[gitdiff] merge base lookup failed: %v", err)
		}
		logger.Warnf("[gitdiff] no merge base between %s and %s (shallow history?), diffing against the base tip",
			base.Hash, head.Hash)
		return base
	}
	return bases[0]
}

// toEvent maps a tree change onto the closed file event type.
func toEvent(change *object.Change) (entities.FileChangeEvent, error) {
	action, err := change.Action()
	if err != nil {
		return nil, fmt.Errorf("failed to classify change: %w", err)
	}

	switch action {
	case merkletrie.Insert:
		return entities.NewAdded(change.To.Name), nil
	case merkletrie.Delete:
		return entities.NewDeleted(change.From.Name), nil
	case merkletrie.Modify:
		if change.From.Name != change.To.Name {
			return entities.NewRenamed(change.From.Name, change.To.Name), nil
		}
		return entities.NewModified(change.To.Name), nil
	default:
		return nil, fmt.Errorf("unsupported change action %v for %s", action, change)
	}
}
