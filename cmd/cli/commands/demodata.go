package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/lab-matching/pkg/core/demodata"
	"github.com/jakechorley/lab-matching/pkg/core/services"
	"github.com/jakechorley/lab-matching/pkg/problemio"
)

// DemoDataCmd creates the demodata command. Flag defaults come from the demoData config section.
func DemoDataCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demodata",
		Short: "Generate a synthetic problem file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			opts := demodata.Options{
				Students: app.Cfg.DemoData.Students,
				Teachers: app.Cfg.DemoData.Teachers,
				Limit:    app.Cfg.DemoData.Limit,
				Mode:     demodata.Mode(app.Cfg.DemoData.Mode),
			}
			if cmd.Flags().Changed("ns") {
				opts.Students, _ = cmd.Flags().GetInt("ns")
			}
			if cmd.Flags().Changed("nt") {
				opts.Teachers, _ = cmd.Flags().GetInt("nt")
			}
			if cmd.Flags().Changed("limit") {
				opts.Limit, _ = cmd.Flags().GetInt("limit")
			}
			if cmd.Flags().Changed("opt") {
				mode, _ := cmd.Flags().GetString("opt")
				opts.Mode = demodata.Mode(mode)
			}
			opts.Seed, _ = cmd.Flags().GetUint64("seed")

			if output == "" {
				output = app.Cfg.OutputDir
			}
			if err := problemio.EnsureDir(output); err != nil {
				return err
			}

			result, err := services.GenerateDemoData(app.Ctx, app.Store, app.Logger, opts, output)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "\n✓ Demo data generated\n\n")
			fmt.Fprintf(w, "Students: %d\n", len(result.Problem.Students))
			fmt.Fprintf(w, "Teachers: %d\n", len(result.Problem.Teachers))
			fmt.Fprintf(w, "Saved to: %s\n\n", result.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output directory (defaults to outputDir from config)")
	cmd.Flags().Int("ns", 20, "Number of students")
	cmd.Flags().Int("nt", 15, "Number of teachers")
	cmd.Flags().Int("limit", 10, "Number of teachers each student ranks")
	cmd.Flags().String("opt", string(demodata.ModeRandom), "Choice mode: random or separate")
	cmd.Flags().Uint64("seed", 0, "Seed for the random source")

	return cmd
}
