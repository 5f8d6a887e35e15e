package patchdiff

import "io"

// NewDiffRepositoryWithStdin creates a patch source reading "-" from stdin.
func NewDiffRepositoryWithStdin(stdin io.Reader) *PatchDiffRepository {
	return &PatchDiffRepository{stdin: stdin}
}
