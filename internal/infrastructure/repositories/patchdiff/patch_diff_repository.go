package patchdiff

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/rios0rios0/monocheck/internal/domain/entities"
	"github.com/rios0rios0/monocheck/internal/domain/repositories"
)

const (
	sourceName  = "patch"
	stdinMarker = "-"
	devNull     = "/dev/null"

	renameFromHeader  = "rename from "
	renameToHeader    = "rename to "
	newFileHeader     = "new file mode"
	deletedFileHeader = "deleted file mode"
)

// PatchDiffRepository implements repositories.DiffRepository for unified
// diffs produced by "git diff -M", read from a file or from stdin.
type PatchDiffRepository struct {
	stdin io.Reader
}

// NewDiffRepository creates a patch diff source reading "-" from os.Stdin.
func NewDiffRepository() repositories.DiffRepository {
	return &PatchDiffRepository{stdin: os.Stdin}
}

func (r *PatchDiffRepository) Name() string { return sourceName }

// Changes parses the patch and returns one event per file, in patch order.
func (r *PatchDiffRepository) Changes(
	_ context.Context,
	req repositories.DiffRequest,
) ([]entities.FileChangeEvent, error) {
	data, err := r.readPatch(req.Patch)
	if err != nil {
		return nil, err
	}
	return ParseEvents(data)
}

// WorkTree returns req.RepoDir: patch paths are relative to the checkout the
// patch applies to, and that checkout is expected to hold the patched files.
func (r *PatchDiffRepository) WorkTree(
	_ context.Context,
	req repositories.DiffRequest,
) (string, error) {
	return req.RepoDir, nil
}

// ParseEvents converts a multi-file unified diff into file events.
func ParseEvents(data []byte) ([]entities.FileChangeEvent, error) {
	fileDiffs, err := diff.ParseMultiFileDiff(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse patch: %w", err)
	}

	events := make([]entities.FileChangeEvent, 0, len(fileDiffs))
	for _, fileDiff := range fileDiffs {
		events = append(events, toEvent(fileDiff))
	}

	logger.Debugf("[patchdiff] parsed %d file diffs", len(events))
	return events, nil
}

func (r *PatchDiffRepository) readPatch(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("no patch file given (use %q for stdin)", stdinMarker)
	}
	if path == stdinMarker {
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read patch from stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read patch file %q: %w", path, err)
	}
	return data, nil
}

// toEvent classifies a file diff using its extended git headers first and
// the /dev/null convention second.
func toEvent(fileDiff *diff.FileDiff) entities.FileChangeEvent {
	var renameFrom, renameTo string
	isNew, isDeleted := false, false

	for _, header := range fileDiff.Extended {
		switch {
		case strings.HasPrefix(header, renameFromHeader):
			renameFrom = strings.TrimPrefix(header, renameFromHeader)
		case strings.HasPrefix(header, renameToHeader):
			renameTo = strings.TrimPrefix(header, renameToHeader)
		case strings.HasPrefix(header, newFileHeader):
			isNew = true
		case strings.HasPrefix(header, deletedFileHeader):
			isDeleted = true
		}
	}

	switch {
	case renameFrom != "" && renameTo != "":
		return entities.NewRenamed(renameFrom, renameTo)
	case isNew || fileDiff.OrigName == devNull:
		return entities.NewAdded(stripPrefix(fileDiff.NewName, "b/"))
	case isDeleted || fileDiff.NewName == devNull:
		return entities.NewDeleted(stripPrefix(fileDiff.OrigName, "a/"))
	default:
		return entities.NewModified(stripPrefix(fileDiff.NewName, "b/"))
	}
}

func stripPrefix(name, prefix string) string {
	return strings.TrimPrefix(name, prefix)
}
