package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ingoeichhorst/debtgraph/internal/output"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

var (
	compareTarget string
	compareFormat string
)

var compareCmd = &cobra.Command{
	Use:   "compare <before.json> <after.json>",
	Short: "Compare two analysis runs",
	Long: `Compare two prior analysis JSON outputs and report regressions,
improvements, and the overall debt trend. An optional --target
file:function:line tracks a single location's evolution.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := loadReport(args[0])
		if err != nil {
			return err
		}
		after, err := loadReport(args[1])
		if err != nil {
			return err
		}
		if before.Version != after.Version {
			return &model.ExitError{
				Code:    1,
				Message: fmt.Sprintf("schema version mismatch: before=%s after=%s", before.Version, after.Version),
			}
		}

		var target *model.Location
		if compareTarget != "" {
			loc, err := output.ParseTargetLocation(compareTarget)
			if err != nil {
				return err
			}
			target = &loc
		}

		cj := output.CompareReports(before, after, target)

		switch compareFormat {
		case "json":
			return output.RenderComparisonJSON(cmd.OutOrStdout(), cj)
		case "markdown":
			output.RenderComparisonMarkdown(cmd.OutOrStdout(), cj)
			return nil
		case "terminal":
			output.RenderComparisonTerminal(cmd.OutOrStdout(), cj)
			return nil
		default:
			return fmt.Errorf("unknown --format %q (expected terminal, markdown, or json)", compareFormat)
		}
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareTarget, "target", "", "track a single location (file:function:line)")
	compareCmd.Flags().StringVar(&compareFormat, "format", "terminal", "output format: terminal, markdown, or json")
	rootCmd.AddCommand(compareCmd)
}

func loadReport(path string) (*output.JSONReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read analysis file %s: %w", path, err)
	}
	defer f.Close()
	report, err := output.ParseJSONReport(f)
	if err != nil {
		return nil, fmt.Errorf("cannot parse analysis file %s: %w", path, err)
	}
	return report, nil
}
