package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/unpack/internal/cel"
)

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the functions available to --expression",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eval, err := cel.NewEvaluator()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, fn := range eval.Functions() {
				if _, err := fmt.Fprintln(out, fn); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
