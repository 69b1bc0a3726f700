package console

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartfactory/llmops-console/internal/api"
	"github.com/smartfactory/llmops-console/internal/model"
)

type tracesLoadedMsg struct{ traces []model.Trace }

// tracesView lists recorded traces with their aggregated quality scores.
type tracesView struct {
	client  *api.Client
	logger  *slog.Logger
	spin    spinner.Model
	loading bool
	traces  []model.Trace
	tbl     table.Model
}

func newTracesView(client *api.Client, logger *slog.Logger) *tracesView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Timestamp", Width: 22},
			{Title: "ID", Width: 10},
			{Title: "Input", Width: 38},
			{Title: "Latency", Width: 9},
			{Title: "Tokens", Width: 7},
			{Title: "Cost", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(16),
	)
	styleTable(&tbl)
	return &tracesView{client: client, logger: logger, spin: sp, tbl: tbl}
}

func (v *tracesView) Init() tea.Cmd {
	v.loading = true
	return tea.Batch(v.fetch(), v.spin.Tick)
}

func (v *tracesView) fetch() tea.Cmd {
	return func() tea.Msg {
		raw, err := v.client.Traces(context.Background())
		if err != nil {
			v.logger.Warn("fetch traces", "error", err)
		}
		return tracesLoadedMsg{traces: api.DecodeList[model.Trace](raw, "traces")}
	}
}

func (v *tracesView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case tracesLoadedMsg:
		v.loading = false
		v.traces = msg.traces
		rows := make([]table.Row, 0, len(v.traces))
		for _, t := range v.traces {
			rows = append(rows, table.Row{
				t.Timestamp,
				shortID(t.TraceID),
				truncate(t.Prompt(), 38),
				fmt.Sprintf("%.0fms", t.LatencyMillis()),
				fmt.Sprintf("%d", t.Tokens),
				fmt.Sprintf("$%.5f", t.Cost),
			})
		}
		v.tbl.SetRows(rows)
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		if v.loading {
			return v, cmd
		}
		return v, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		v.tbl, cmd = v.tbl.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *tracesView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Traces"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%d traces", len(v.traces))))
	b.WriteString("\n\n")

	if v.loading {
		fmt.Fprintf(&b, "%s Loading...\n", v.spin.View())
		return b.String()
	}

	b.WriteString(v.tbl.View())
	b.WriteString("\n")
	if idx := v.tbl.Cursor(); idx >= 0 && idx < len(v.traces) {
		b.WriteString(scoreLine(v.traces[idx].Scores))
	}
	return b.String()
}

// scoreLine renders the selected trace's named scores as colored badges,
// banded at 0.6 and 0.3 like the traces page.
func scoreLine(scores map[string]float64) string {
	if len(scores) == 0 {
		return dimStyle.Render("No scores recorded for selected trace")
	}
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		val := scores[name]
		text := fmt.Sprintf("%s: %.2f", name, val)
		switch {
		case val < 0.3:
			parts = append(parts, badgeBad.Render(text))
		case val < 0.6:
			parts = append(parts, badgeWarn.Render(text))
		default:
			parts = append(parts, badgeGood.Render(text))
		}
	}
	return "Scores: " + strings.Join(parts, "  ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
