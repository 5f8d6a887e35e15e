package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/monocheck/internal/domain/commands"
	"github.com/rios0rios0/monocheck/internal/domain/entities"
)

// DeprecationsController handles the "deprecations" subcommand.
type DeprecationsController struct {
	command commands.Deprecations
	exit    exitFunc
}

// NewDeprecationsController creates a new DeprecationsController.
func NewDeprecationsController(command commands.Deprecations) *DeprecationsController {
	return &DeprecationsController{command: command, exit: defaultExit()}
}

// GetBind returns the Cobra command metadata for the deprecations controller.
func (it *DeprecationsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "deprecations [path]",
		Short: "Validate the deprecation records of a change-set",
		Long: `Check every package marked as not needed by the change-set:
its typings must be deleted in the same change, the library must be
published at the recorded version and that version must be newer than
the last published typings.`,
	}
}

// Execute validates the deprecations and prints every problem found.
func (it *DeprecationsController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	settings, err := entities.LoadSettings(configPath)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		it.exit(1)
		return
	}

	errs, err := it.command.Execute(ctx, settings, readDiffOptions(cmd, args))
	if err != nil {
		logger.Errorf("Deprecation check failed: %v", err)
		it.exit(1)
		return
	}

	if len(errs) > 0 {
		printErrors(cmd.ErrOrStderr(), errs)
		it.exit(1)
		return
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "All deprecation records are valid")
}

// AddFlags adds the deprecations-specific flags to the given Cobra command.
func (it *DeprecationsController) AddFlags(cmd *cobra.Command) {
	addDiffFlags(cmd)
}
