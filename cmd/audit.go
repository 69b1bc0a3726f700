package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartfactory/llmops-console/internal/api"
	"github.com/smartfactory/llmops-console/internal/console"
	"github.com/smartfactory/llmops-console/internal/export"
	"github.com/smartfactory/llmops-console/internal/model"
)

var (
	auditType   string
	auditSearch string
	auditOut    string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Work with the audit trail",
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit logs to CSV",
	Long: `Fetches the audit trail and writes it as CSV, applying the same type and
free-text filters the console offers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer rt.close()

		raw, err := rt.client.AuditLogs(cmd.Context())
		if err != nil {
			return ExitError{Code: 1, Err: fmt.Errorf("fetch audit logs: %w", err)}
		}
		logs := api.DecodeList[model.AuditLog](raw, "audit")
		filtered := console.FilterAudit(logs, auditType, auditSearch)

		out := auditOut
		if out == "" {
			out = rt.cfg.Audit.ExportPath
		}
		if err := export.ExportAudit(out, filtered); err != nil {
			return ExitError{Code: 1, Err: fmt.Errorf("export audit: %w", err)}
		}
		fmt.Printf("Exported %d rows to %s\n", len(filtered), out)
		return nil
	},
}

func init() {
	auditExportCmd.Flags().StringVar(&auditType, "type", console.AllTypes, "entry type filter (evaluator, template)")
	auditExportCmd.Flags().StringVar(&auditSearch, "search", "", "substring filter over action, details, and user")
	auditExportCmd.Flags().StringVar(&auditOut, "out", "", "output file (defaults to audit.export_path)")
	auditCmd.AddCommand(auditExportCmd)
	rootCmd.AddCommand(auditCmd)
}
