package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
	"github.com/ingoeichhorst/debtgraph/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "debtgraph",
	Short:   "debtgraph - prioritize technical debt across Go and Python codebases",
	Long:    "debtgraph builds a call graph of every function in a repository, joins\noptional coverage and history data, and ranks functions by how valuable\nrefactoring, testing, or deleting them would be.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *model.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
