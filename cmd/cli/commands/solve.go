package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jakechorley/lab-matching/pkg/core/matching"
	"github.com/jakechorley/lab-matching/pkg/core/services"
	"github.com/jakechorley/lab-matching/pkg/problemio"
)

// SolveCmd creates the solve command
func SolveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Compute an assignment with one method and save it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			methodName, _ := cmd.Flags().GetString("method")
			verbose, _ := cmd.Flags().GetBool("verbose")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			if methodName == "" {
				methodName = app.Cfg.DefaultMethod
			}
			method, err := matching.ParseMethod(methodName)
			if err != nil {
				return err
			}
			if output == "" {
				output = app.Cfg.OutputDir
			}
			if !dryRun {
				if err := problemio.EnsureDir(output); err != nil {
					return err
				}
			}

			result, err := services.SolveProblem(app.Ctx, app.Store, app.Cfg, app.Logger, input, output, method, dryRun)
			if err != nil {
				return err
			}

			printSolveResult(cmd.OutOrStdout(), result, verbose)
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "Problem file (.json, .yaml or .yml)")
	cmd.Flags().StringP("output", "o", "", "Output directory (defaults to outputDir from config)")
	cmd.Flags().StringP("method", "m", "", "Method: DA, MNK or HNG (defaults to defaultMethod from config)")
	cmd.Flags().BoolP("verbose", "v", false, "Print the assignment")
	cmd.Flags().Bool("dry-run", false, "Solve without saving the assignment")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func printSolveResult(w io.Writer, result *services.SolveResult, verbose bool) {
	if verbose {
		fmt.Fprintf(w, "\n%s\n", problemio.FormatAssignment(result.Problem, result.Assignment))
	}

	if result.Success {
		fmt.Fprintf(w, "✓ Assignment computed with %s\n\n", result.Method)
	} else {
		fmt.Fprintf(w, "⚠️  Assignment computed with %s has %d violations:\n", result.Method, len(result.Violations))
		for _, v := range result.Violations {
			fmt.Fprintf(w, "  ✗ [%s] %s: %s\n", v.Rule, v.TeacherID, v.Description)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Run ID:     %s\n", result.RunID)
	fmt.Fprintf(w, "Score:      %.4f\n", result.Score)
	fmt.Fprintf(w, "Unassigned: %d\n", len(result.Assignment.Unassigned()))
	if result.OutputPath != "" {
		fmt.Fprintf(w, "Saved to:   %s\n", result.OutputPath)
	} else {
		fmt.Fprintln(w, "Dry run, nothing saved")
	}
}
