package controllers

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/monocheck/internal/domain/commands"
)

// exitFunc terminates the process with a non-zero status when a change-set
// is rejected.
type exitFunc func(code int)

func addDiffFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "Where changes come from (git, patch)")
	cmd.Flags().String("base", "", "Base revision of the change-set (default: origin/master)")
	cmd.Flags().String("head", "", "Head revision of the change-set (default: HEAD)")
	cmd.Flags().String("patch", "", "Unified diff to read when --source=patch, \"-\" for stdin")
}

func readDiffOptions(cmd *cobra.Command, args []string) commands.DiffOptions {
	source, _ := cmd.Flags().GetString("source")
	base, _ := cmd.Flags().GetString("base")
	head, _ := cmd.Flags().GetString("head")
	patch, _ := cmd.Flags().GetString("patch")

	repoDir := "."
	if len(args) > 0 {
		repoDir = args[0]
	}

	// a patch without an explicit source can only mean the patch source
	if patch != "" && source == "" {
		source = "patch"
	}

	return commands.DiffOptions{
		RepoDir: repoDir,
		Source:  source,
		Base:    base,
		Head:    head,
		Patch:   patch,
	}
}

func defaultExit() exitFunc {
	return os.Exit
}
