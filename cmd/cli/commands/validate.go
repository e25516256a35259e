package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/lab-matching/pkg/core/services"
)

// ValidateCmd creates the validate command
func ValidateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a problem file and list the methods that can solve it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")

			summary, err := services.ValidateProblem(app.Ctx, app.Store, app.Logger, input)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "\n✓ %s is valid\n\n", input)
			fmt.Fprintf(w, "Students:     %d\n", summary.Students)
			fmt.Fprintf(w, "Teachers:     %d\n", summary.Teachers)
			fmt.Fprintf(w, "Seats:        %d\n", summary.TotalCapacity)
			if summary.ChoiceLimit >= 0 {
				fmt.Fprintf(w, "Choice limit: %d\n", summary.ChoiceLimit)
			} else {
				fmt.Fprintln(w, "Choice limit: not uniform")
			}
			fmt.Fprintf(w, "Methods:      %v\n\n", summary.Methods)
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "Problem file (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
