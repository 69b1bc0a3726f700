package cmd

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/smartfactory/llmops-console/internal/console"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive admin console",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole()
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole() error {
	rt, err := setup(io.Discard)
	if err != nil {
		return err
	}
	defer rt.close()

	app := console.NewApp(rt.cfg, rt.client, rt.gate, rt.logger)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return ExitError{Code: 1, Err: fmt.Errorf("console: %w", err)}
	}
	return nil
}
