package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer rt.close()

		if err := rt.gate.Logout(); err != nil {
			return ExitError{Code: 1, Err: fmt.Errorf("logout: %w", err)}
		}
		fmt.Println("Signed out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
