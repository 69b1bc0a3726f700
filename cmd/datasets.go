package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Work with evaluation datasets",
}

var datasetsRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Trigger an evaluation run over a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer rt.close()

		name := args[0]
		if err := rt.client.RunDataset(cmd.Context(), name); err != nil {
			return ExitError{Code: 1, Err: fmt.Errorf("run dataset %s: %w", name, err)}
		}
		fmt.Printf("Evaluation triggered for %s\n", name)
		return nil
	},
}

func init() {
	datasetsCmd.AddCommand(datasetsRunCmd)
	rootCmd.AddCommand(datasetsCmd)
}
