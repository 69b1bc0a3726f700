package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the corporate identity provider",
	Long: `Runs the device-code sign-in without starting the console. The session is
stored on disk and picked up by subsequent invocations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer rt.close()

		if sess, ok := rt.gate.Current(); ok {
			fmt.Printf("Already signed in as %s\n", sess.Account)
			return nil
		}

		sess, err := rt.gate.Login(cmd.Context(), func(verificationURI, userCode string) {
			fmt.Printf("To sign in, open %s and enter the code %s\n", verificationURI, userCode)
			fmt.Println("Waiting for sign-in to complete...")
		})
		if err != nil {
			return ExitError{Code: 1, Err: fmt.Errorf("login: %w", err)}
		}
		fmt.Printf("Signed in as %s\n", sess.Account)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
