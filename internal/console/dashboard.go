package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/smartfactory/llmops-console/internal/api"
	"github.com/smartfactory/llmops-console/internal/model"
)

type sessionsLoadedMsg struct{ sessions []model.Session }

// dashboardView is the landing page: per-session aggregates with totals
// across the deployment.
type dashboardView struct {
	client   *api.Client
	logger   *slog.Logger
	spin     spinner.Model
	loading  bool
	sessions []model.Session
	tbl      table.Model
}

func newDashboardView(client *api.Client, logger *slog.Logger) *dashboardView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Session", Width: 30},
			{Title: "User", Width: 22},
			{Title: "Traces", Width: 7},
			{Title: "Tokens", Width: 10},
			{Title: "Cost", Width: 10},
			{Title: "Created", Width: 22},
		}),
		table.WithFocused(true),
		table.WithHeight(14),
	)
	styleTable(&tbl)
	return &dashboardView{client: client, logger: logger, spin: sp, tbl: tbl}
}

func (v *dashboardView) Init() tea.Cmd {
	v.loading = true
	return tea.Batch(v.fetch(), v.spin.Tick)
}

func (v *dashboardView) fetch() tea.Cmd {
	return func() tea.Msg {
		raw, err := v.client.Sessions(context.Background())
		if err != nil {
			v.logger.Warn("fetch sessions", "error", err)
		}
		return sessionsLoadedMsg{sessions: api.DecodeList[model.Session](raw, "sessions")}
	}
}

func (v *dashboardView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		v.loading = false
		v.sessions = msg.sessions
		rows := make([]table.Row, 0, len(v.sessions))
		for _, s := range v.sessions {
			rows = append(rows, table.Row{
				shortID(s.SessionID),
				s.Owner(),
				fmt.Sprintf("%d", s.TraceCount),
				humanize.Comma(int64(s.TotalTokens)),
				fmt.Sprintf("$%.4f", s.TotalCost),
				s.CreatedAt,
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

func (v *dashboardView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render("Monitoring overview"))
	b.WriteString("\n\n")

	if v.loading {
		fmt.Fprintf(&b, "%s Loading...\n", v.spin.View())
		return b.String()
	}

	var traces, tokens int
	var cost float64
	for _, s := range v.sessions {
		traces += s.TraceCount
		tokens += s.TotalTokens
		cost += s.TotalCost
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		cardStyle.Render(fmt.Sprintf("Sessions\n%s", titleStyle.Render(humanize.Comma(int64(len(v.sessions)))))),
		cardStyle.Render(fmt.Sprintf("Traces\n%s", titleStyle.Render(humanize.Comma(int64(traces))))),
		cardStyle.Render(fmt.Sprintf("Tokens\n%s", titleStyle.Render(humanize.Comma(int64(tokens))))),
		cardStyle.Render(fmt.Sprintf("Total Cost\n%s", titleStyle.Render(fmt.Sprintf("$%.2f", cost)))),
	)
	b.WriteString(cards)
	b.WriteString("\n\n")

	if len(v.sessions) == 0 {
		b.WriteString(dimStyle.Render("No sessions recorded yet."))
	} else {
		b.WriteString(v.tbl.View())
	}
	return b.String()
}
