package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartfactory/llmops-console/internal/api"
	"github.com/smartfactory/llmops-console/internal/export"
	"github.com/smartfactory/llmops-console/internal/model"
)

// AllTypes is the audit type filter sentinel.
const AllTypes = "All Types"

// AuditTypeOptions is the fixed type enumeration; entries are matched
// exactly but case-insensitively.
var AuditTypeOptions = []string{AllTypes, "evaluator", "template"}

// FilterAudit returns the entries passing the type filter (exact,
// case-insensitive) and the free-text search (case-insensitive substring over
// action, details, and user).
func FilterAudit(logs []model.AuditLog, typeFilter, search string) []model.AuditLog {
	needle := strings.ToLower(search)
	out := make([]model.AuditLog, 0, len(logs))
	for _, l := range logs {
		if typeFilter != AllTypes && !strings.EqualFold(l.Type, typeFilter) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(l.Action), needle) &&
			!strings.Contains(strings.ToLower(l.Details), needle) &&
			!strings.Contains(strings.ToLower(l.User), needle) {
			continue
		}
		out = append(out, l)
	}
	return out
}

type auditLoadedMsg struct{ logs []model.AuditLog }

type auditExportedMsg struct {
	path string
	rows int
	err  error
}

// auditView lists administrative actions taken on evaluators and templates,
// with filtering and CSV export of the currently filtered rows.
type auditView struct {
	client     *api.Client
	logger     *slog.Logger
	exportPath string
	spin       spinner.Model
	loading    bool

	logs       []model.AuditLog
	typeFilter string
	search     textinput.Model
	searching  bool
	filtered   []model.AuditLog
	tbl        table.Model
	notice     string
}

func newAuditView(client *api.Client, logger *slog.Logger, exportPath string) *auditView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	search := textinput.New()
	search.Placeholder = "Search action, details, user..."
	search.CharLimit = 80
	search.Width = 36

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Timestamp", Width: 22},
			{Title: "Type", Width: 10},
			{Title: "Action", Width: 22},
			{Title: "User", Width: 18},
			{Title: "Details", Width: 40},
		}),
		table.WithFocused(true),
		table.WithHeight(14),
	)
	styleTable(&tbl)

	return &auditView{
		client:     client,
		logger:     logger,
		exportPath: exportPath,
		spin:       sp,
		typeFilter: AllTypes,
		search:     search,
		tbl:        tbl,
	}
}

func (v *auditView) capturesInput() bool { return v.searching }

func (v *auditView) Init() tea.Cmd {
	v.loading = true
	return tea.Batch(v.fetch(), v.spin.Tick)
}

func (v *auditView) fetch() tea.Cmd {
	return func() tea.Msg {
		raw, err := v.client.AuditLogs(context.Background())
		if err != nil {
			v.logger.Warn("fetch audit logs", "error", err)
		}
		return auditLoadedMsg{logs: api.DecodeList[model.AuditLog](raw, "audit")}
	}
}

// exportFiltered writes the rows currently on screen, not the full set.
func (v *auditView) exportFiltered() tea.Cmd {
	rows := v.filtered
	path := v.exportPath
	return func() tea.Msg {
		err := export.ExportAudit(path, rows)
		return auditExportedMsg{path: path, rows: len(rows), err: err}
	}
}

func (v *auditView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case auditLoadedMsg:
		v.loading = false
		v.logs = msg.logs
		v.applyFilters()
		return v, nil

	case auditExportedMsg:
		if msg.err != nil {
			v.logger.Warn("export audit", "error", msg.err)
			v.notice = errorStyle.Render("Export failed: " + msg.err.Error())
		} else {
			v.notice = successStyle.Render(fmt.Sprintf("Exported %d rows to %s", msg.rows, msg.path))
		}
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		if v.loading {
			return v, cmd
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *auditView) handleKey(msg tea.KeyMsg) (view, tea.Cmd) {
	if v.searching {
		switch msg.String() {
		case "enter", "esc":
			v.searching = false
			v.search.Blur()
			return v, nil
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		v.applyFilters()
		return v, cmd
	}

	switch msg.String() {
	case "t":
		v.typeFilter = cycleOption(AuditTypeOptions, v.typeFilter)
		v.applyFilters()
		return v, nil
	case "/":
		v.searching = true
		v.search.Focus()
		return v, textinput.Blink
	case "x":
		return v, v.exportFiltered()
	}

	var cmd tea.Cmd
	v.tbl, cmd = v.tbl.Update(msg)
	return v, cmd
}

func (v *auditView) applyFilters() {
	v.filtered = FilterAudit(v.logs, v.typeFilter, v.search.Value())
	rows := make([]table.Row, 0, len(v.filtered))
	for _, l := range v.filtered {
		rows = append(rows, table.Row{l.Timestamp, l.Type, l.Action, l.User, truncate(l.Details, 40)})
	}
	v.tbl.SetRows(rows)
	if v.tbl.Cursor() >= len(rows) {
		v.tbl.SetCursor(0)
	}
}

func (v *auditView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Audit Logs"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render("Administrative actions on evaluators and templates"))
	b.WriteString("\n\n")

	if v.loading {
		fmt.Fprintf(&b, "%s Loading...\n", v.spin.View())
		return b.String()
	}

	fmt.Fprintf(&b, "Type: %s", titleStyle.Render(v.typeFilter))
	if v.searching || v.search.Value() != "" {
		b.WriteString("   " + v.search.View())
	}
	b.WriteString("\n\n")

	if len(v.filtered) == 0 {
		b.WriteString(dimStyle.Render("No audit entries match the current filters."))
	} else {
		b.WriteString(v.tbl.View())
	}
	b.WriteString("\n")
	if v.notice != "" {
		b.WriteString(v.notice + "\n")
	}
	b.WriteString(dimStyle.Render("t cycle type · / search · x export filtered rows"))
	return b.String()
}
