// Package export serializes console data for download-style output.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/smartfactory/llmops-console/internal/model"
)

// AuditHeader is the fixed CSV header row.
const AuditHeader = "Timestamp,Type,Action,User,Details"

// WriteAuditCSV serializes audit rows as double-quoted comma-separated
// values: one header line plus one line per row, newline-separated. Embedded
// quotes are not escaped, matching what consumers of these exports already
// parse.
func WriteAuditCSV(w io.Writer, rows []model.AuditLog) error {
	var b strings.Builder
	b.WriteString(AuditHeader)
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(auditRow(r))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func auditRow(r model.AuditLog) string {
	fields := []string{r.Timestamp, r.Type, r.Action, r.User, r.Details}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + f + `"`
	}
	return strings.Join(quoted, ",")
}

// ExportAudit writes the rows to path, creating parent directories as needed.
func ExportAudit(path string, rows []model.AuditLog) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer f.Close()
	return WriteAuditCSV(f, rows)
}
