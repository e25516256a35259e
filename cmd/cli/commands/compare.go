package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jakechorley/lab-matching/pkg/core/services"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"
)

// CompareCmd creates the compare command
func CompareCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every method on a problem and compare their scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")

			result, err := services.CompareMethods(app.Ctx, app.Store, app.Cfg, app.Logger, input)
			if err != nil {
				return err
			}

			printComparison(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "Problem file (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func printComparison(w io.Writer, result *services.CompareResult) {
	best, hasBest := result.Best()

	fmt.Fprintf(w, "\nRun ID: %s\n\n", result.RunID)
	fmt.Fprintf(w, "%-6s %14s %8s %11s %7s\n", "Method", "Score", "Placed", "Unassigned", "Optima")
	for _, o := range result.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "%-6s %s%s%s\n", o.Method, colorRed, o.Err, colorReset)
			continue
		}

		optima := "-"
		if o.Optima > 0 {
			optima = fmt.Sprintf("%d", o.Optima)
		}
		line := fmt.Sprintf("%-6s %14.4f %8d %11d %7s", o.Method, o.Score, o.Placed, o.Unassigned, optima)
		if hasBest && o.Method == best.Method {
			line = colorGreen + line + colorReset
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}
