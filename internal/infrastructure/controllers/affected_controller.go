package controllers

import (
	"context"
	"fmt"
	"io"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/monocheck/internal/domain/commands"
	"github.com/rios0rios0/monocheck/internal/domain/entities"
)

// AffectedController handles the "affected" subcommand (full pipeline).
type AffectedController struct {
	command commands.Affected
	exit    exitFunc
}

// NewAffectedController creates a new AffectedController.
func NewAffectedController(command commands.Affected) *AffectedController {
	return &AffectedController{command: command, exit: defaultExit()}
}

// GetBind returns the Cobra command metadata for the affected controller.
func (it *AffectedController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "affected [path]",
		Short: "List the packages changed and affected by a change-set",
		Long: `Classify the file changes between two revisions of the monorepo,
validate edits to the deprecation manifest and print the changed packages
together with every package that depends on them.

Exits with status 1 and prints every problem when the change-set is rejected.`,
	}
}

// Execute runs the pipeline and prints the result.
func (it *AffectedController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	settings, err := entities.LoadSettings(configPath)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		it.exit(1)
		return
	}

	result, err := it.command.Execute(ctx, settings, commands.AffectedOptions{
		DiffOptions: readDiffOptions(cmd, args),
		Verbose:     verbose,
		MetricsFile: metricsFile,
	})
	if err != nil {
		logger.Errorf("Affected run failed: %v", err)
		it.exit(1)
		return
	}

	if result.IsError() {
		printErrors(cmd.ErrOrStderr(), result.Errors)
		it.exit(1)
		return
	}
	printAffected(cmd.OutOrStdout(), result)
}

// AddFlags adds the affected-specific flags to the given Cobra command.
func (it *AffectedController) AddFlags(cmd *cobra.Command) {
	addDiffFlags(cmd)
	cmd.Flags().String("metrics-file", "", "Write Prometheus textfile metrics to this path")
}

func printAffected(out io.Writer, result *entities.AffectedResult) {
	_, _ = fmt.Fprintln(out, "Changed packages:")
	for _, name := range result.SortedPackageNames() {
		_, _ = fmt.Fprintf(out, "  %s\n", name)
	}
	_, _ = fmt.Fprintln(out, "Dependent packages:")
	for _, name := range result.SortedDependents() {
		_, _ = fmt.Fprintf(out, "  %s\n", name)
	}
}

func printErrors(out io.Writer, errs []string) {
	for _, msg := range errs {
		_, _ = fmt.Fprintf(out, "error: %s\n", msg)
	}
}
