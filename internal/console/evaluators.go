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

	"github.com/smartfactory/llmops-console/internal/api"
	"github.com/smartfactory/llmops-console/internal/model"
	"github.com/smartfactory/llmops-console/internal/util"
)

// Filter sentinels for the evaluation log.
const (
	AllEvaluators = "All Evaluators"
	AllStatus     = "All Status"
)

// StatusOptions is the fixed status filter enumeration. Log statuses are
// free-text and compared case-insensitively against these.
var StatusOptions = []string{AllStatus, "Completed", "Error", "Timeout"}

// FilterLogs returns the logs passing both filter selections: the evaluator
// filter matches on exact name, the status filter case-insensitively, and
// each sentinel passes everything. Recomputed from scratch on every change;
// the collections are small enough that indexing would be noise.
func FilterLogs(logs []model.EvaluationLog, evaluator, status string) []model.EvaluationLog {
	out := make([]model.EvaluationLog, 0, len(logs))
	for _, l := range logs {
		if evaluator != AllEvaluators && l.EvaluatorName != evaluator {
			continue
		}
		if status != AllStatus && !strings.EqualFold(l.Status, status) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// EvaluatorOptions builds the evaluator filter choices: the sentinel followed
// by each distinct evaluator name in first-seen order. Names referencing
// nothing beyond the logs still appear; the filter is only as meaningful as
// the log data.
func EvaluatorOptions(logs []model.EvaluationLog) []string {
	opts := []string{AllEvaluators}
	seen := make(map[string]bool)
	for _, l := range logs {
		if l.EvaluatorName == "" || seen[l.EvaluatorName] {
			continue
		}
		seen[l.EvaluatorName] = true
		opts = append(opts, l.EvaluatorName)
	}
	return opts
}

// ResolveTemplateName maps a template id to its display name by linear scan;
// an unknown id is humanized from the id itself.
func ResolveTemplateName(templates []model.Template, templateID string) string {
	for _, t := range templates {
		if t.TemplateID == templateID {
			if t.Name != "" {
				return t.Name
			}
			break
		}
	}
	if templateID == "" {
		return "Unknown"
	}
	return util.TitleFromID(templateID)
}

// Tab identifiers, also used as navigation state for deep links.
const (
	tabEvaluators = "evaluators"
	tabTemplates  = "templates"
	tabLogs       = "logs"
)

type evaluatorsLoadedMsg struct{ evaluators []model.Evaluator }
type templatesLoadedMsg struct{ templates []model.Template }
type evalLogsLoadedMsg struct{ logs []model.EvaluationLog }

// traceLoadedMsg carries the sequence number of the request that produced
// it; the view drops any response that is not the latest, so a slow fetch can
// never overwrite the modal with stale data.
type traceLoadedMsg struct {
	seq   int
	trace model.Trace
	err   error
}

// evaluatorsView aggregates three independently fetched collections into one
// tabbed screen. Each fetch is defensively unwrapped and downgraded to an
// empty list on failure, so one broken resource never blocks the others.
type evaluatorsView struct {
	client *api.Client
	logger *slog.Logger

	tab     string
	loading int
	spin    spinner.Model

	evaluators []model.Evaluator
	templates  []model.Template
	logs       []model.EvaluationLog

	filterEvaluator string
	filterStatus    string
	filtered        []model.EvaluationLog

	evalTable table.Model
	logTable  table.Model

	modalOpen    bool
	modalLoading bool
	modalTrace   model.Trace
	traceSeq     int
}

func newEvaluatorsView(client *api.Client, logger *slog.Logger, tab string) *evaluatorsView {
	if tab != tabTemplates && tab != tabLogs {
		tab = tabEvaluators
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	v := &evaluatorsView{
		client:          client,
		logger:          logger,
		tab:             tab,
		spin:            sp,
		filterEvaluator: AllEvaluators,
		filterStatus:    AllStatus,
	}

	v.evalTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Status", Width: 8},
			{Title: "Template", Width: 24},
			{Title: "Score Name", Width: 18},
			{Title: "Target", Width: 9},
			{Title: "Sampling", Width: 9},
			{Title: "Created", Width: 20},
		}),
		table.WithHeight(14),
	)
	v.logTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Timestamp", Width: 22},
			{Title: "Evaluator", Width: 22},
			{Title: "Trace ID", Width: 10},
			{Title: "Score", Width: 6},
			{Title: "Duration", Width: 9},
			{Title: "Status", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(14),
	)
	styleTable(&v.evalTable)
	styleTable(&v.logTable)
	return v
}

func styleTable(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).Foreground(dimColor).BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("238")).BorderBottom(true)
	s.Selected = s.Selected.Foreground(accentColor).Bold(true)
	t.SetStyles(s)
}

// Init issues the three fetches concurrently.
func (v *evaluatorsView) Init() tea.Cmd {
	v.loading = 3
	return tea.Batch(
		v.fetchEvaluators(),
		v.fetchTemplates(),
		v.fetchLogs(),
		v.spin.Tick,
	)
}

func (v *evaluatorsView) fetchEvaluators() tea.Cmd {
	return func() tea.Msg {
		raw, err := v.client.Evaluators(context.Background())
		if err != nil {
			v.logger.Warn("fetch evaluators", "error", err)
		}
		return evaluatorsLoadedMsg{evaluators: api.DecodeList[model.Evaluator](raw, "evaluators")}
	}
}

func (v *evaluatorsView) fetchTemplates() tea.Cmd {
	return func() tea.Msg {
		raw, err := v.client.Templates(context.Background())
		if err != nil {
			v.logger.Warn("fetch templates", "error", err)
		}
		return templatesLoadedMsg{templates: api.DecodeList[model.Template](raw, "templates")}
	}
}

func (v *evaluatorsView) fetchLogs() tea.Cmd {
	return func() tea.Msg {
		raw, err := v.client.Evaluations(context.Background())
		if err != nil {
			v.logger.Warn("fetch evaluations", "error", err)
		}
		return evalLogsLoadedMsg{logs: api.DecodeList[model.EvaluationLog](raw, "")}
	}
}

func (v *evaluatorsView) fetchTrace(traceID string) tea.Cmd {
	v.traceSeq++
	seq := v.traceSeq
	return func() tea.Msg {
		trace, err := v.client.Trace(context.Background(), traceID)
		return traceLoadedMsg{seq: seq, trace: trace, err: err}
	}
}

func (v *evaluatorsView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case evaluatorsLoadedMsg:
		v.evaluators = msg.evaluators
		v.loading--
		v.rebuildEvalRows()
		return v, nil

	case templatesLoadedMsg:
		v.templates = msg.templates
		v.loading--
		v.rebuildEvalRows()
		return v, nil

	case evalLogsLoadedMsg:
		v.logs = msg.logs
		v.loading--
		v.applyFilters()
		return v, nil

	case traceLoadedMsg:
		if msg.seq != v.traceSeq {
			// Superseded request; the newest one owns the modal.
			return v, nil
		}
		v.modalLoading = false
		if msg.err != nil {
			v.logger.Warn("fetch trace", "error", msg.err)
			v.modalOpen = false
			return v, nil
		}
		v.modalTrace = msg.trace
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		if v.loading > 0 || v.modalLoading {
			return v, cmd
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *evaluatorsView) handleKey(msg tea.KeyMsg) (view, tea.Cmd) {
	if v.modalOpen {
		switch msg.String() {
		case "esc", "enter":
			v.modalOpen = false
		}
		return v, nil
	}

	switch msg.String() {
	case "tab":
		v.tab = nextTab(v.tab)
		return v, nil
	case "n":
		return v, navigate(routeCreateEval)
	case "t":
		if v.tab == tabTemplates {
			return v, navigate(routeCreateTemplate)
		}
	case "e":
		if v.tab == tabLogs {
			v.filterEvaluator = cycleOption(EvaluatorOptions(v.logs), v.filterEvaluator)
			v.applyFilters()
		}
		return v, nil
	case "s":
		if v.tab == tabLogs {
			v.filterStatus = cycleOption(StatusOptions, v.filterStatus)
			v.applyFilters()
		}
		return v, nil
	case "enter":
		if v.tab == tabLogs {
			if idx := v.logTable.Cursor(); idx >= 0 && idx < len(v.filtered) {
				traceID := v.filtered[idx].TraceID
				if traceID == "" {
					return v, nil
				}
				v.modalOpen = true
				v.modalLoading = true
				v.modalTrace = model.Trace{}
				return v, tea.Batch(v.fetchTrace(traceID), v.spin.Tick)
			}
		}
		return v, nil
	}

	var cmd tea.Cmd
	switch v.tab {
	case tabEvaluators:
		v.evalTable, cmd = v.evalTable.Update(msg)
	case tabLogs:
		v.logTable, cmd = v.logTable.Update(msg)
	}
	return v, cmd
}

func nextTab(tab string) string {
	switch tab {
	case tabEvaluators:
		return tabTemplates
	case tabTemplates:
		return tabLogs
	default:
		return tabEvaluators
	}
}

// cycleOption advances to the next option, wrapping; an unknown current value
// restarts at the head.
func cycleOption(options []string, current string) string {
	if len(options) == 0 {
		return current
	}
	for i, opt := range options {
		if opt == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func (v *evaluatorsView) applyFilters() {
	v.filtered = FilterLogs(v.logs, v.filterEvaluator, v.filterStatus)
	rows := make([]table.Row, 0, len(v.filtered))
	for _, l := range v.filtered {
		rows = append(rows, table.Row{
			l.Timestamp,
			l.EvaluatorName,
			shortID(l.TraceID),
			fmt.Sprintf("%.2f", l.Score),
			fmt.Sprintf("%.0fms", l.Duration),
			l.Status,
		})
	}
	v.logTable.SetRows(rows)
	if v.logTable.Cursor() >= len(rows) {
		v.logTable.SetCursor(0)
	}
}

func (v *evaluatorsView) rebuildEvalRows() {
	rows := make([]table.Row, 0, len(v.evaluators))
	for _, ev := range v.evaluators {
		status := "active"
		if !ev.Active {
			status = "inactive"
		}
		rows = append(rows, table.Row{
			ev.Name,
			status,
			ResolveTemplateName(v.templates, ev.TemplateID),
			ev.ScoreName,
			ev.Target,
			fmt.Sprintf("%.0f%%", ev.Sampling*100),
			ev.CreatedAt,
		})
	}
	v.evalTable.SetRows(rows)
}

func shortID(id string) string {
	if id == "" {
		return "N/A"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (v *evaluatorsView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Evaluators"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render("Automated evaluation system"))
	b.WriteString("\n\n")
	b.WriteString(v.tabBar())
	b.WriteString("\n\n")

	if v.loading > 0 {
		fmt.Fprintf(&b, "%s Loading...\n", v.spin.View())
		return b.String()
	}

	switch v.tab {
	case tabTemplates:
		b.WriteString(v.templatesTab())
	case tabLogs:
		b.WriteString(v.logsTab())
	default:
		b.WriteString(v.evalTable.View())
		b.WriteString("\n" + dimStyle.Render("tab switch · n new evaluator"))
	}

	if v.modalOpen {
		return b.String() + "\n" + v.traceModal()
	}
	return b.String()
}

func (v *evaluatorsView) tabBar() string {
	var parts []string
	for _, tab := range []struct{ id, label string }{
		{tabEvaluators, "Evaluators"},
		{tabTemplates, "Templates"},
		{tabLogs, "Evaluation Log"},
	} {
		if tab.id == v.tab {
			parts = append(parts, tabActiveStyle.Render(tab.label))
		} else {
			parts = append(parts, tabStyle.Render(tab.label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (v *evaluatorsView) templatesTab() string {
	if len(v.templates) == 0 {
		return dimStyle.Render("No templates defined.") + "\n" + dimStyle.Render("t new template")
	}
	var b strings.Builder
	for _, t := range v.templates {
		var card strings.Builder
		name := t.Name
		if name == "" {
			name = util.TitleFromID(t.TemplateID)
		}
		version := t.Version
		if version == "" {
			version = "1"
		}
		fmt.Fprintf(&card, "%s %s\n", titleStyle.Render(name), dimStyle.Render("v"+version))
		if t.Description != "" {
			card.WriteString(subtitleStyle.Render(t.Description) + "\n")
		}
		modelName := t.Model
		if modelName == "" {
			modelName = "gpt-4o-mini"
		}
		fmt.Fprintf(&card, "Model: %s", modelName)
		if inputs := t.DeclaredInputs(); len(inputs) > 0 {
			vars := make([]string, len(inputs))
			for i, in := range inputs {
				vars[i] = "{{" + in + "}}"
			}
			fmt.Fprintf(&card, "   Inputs: %s", dimStyle.Render(strings.Join(vars, " ")))
		}
		if t.UpdatedAt != "" {
			fmt.Fprintf(&card, "\n%s", dimStyle.Render("Last updated: "+t.UpdatedAt))
		}
		b.WriteString(cardStyle.Render(card.String()))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("tab switch · t new template"))
	return b.String()
}

func (v *evaluatorsView) logsTab() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Filter: %s · %s\n\n",
		titleStyle.Render(v.filterEvaluator),
		titleStyle.Render(v.filterStatus))
	if len(v.filtered) == 0 {
		b.WriteString(dimStyle.Render("No historical evaluations found in registry"))
	} else {
		b.WriteString(v.logTable.View())
		if idx := v.logTable.Cursor(); idx >= 0 && idx < len(v.filtered) {
			l := v.filtered[idx]
			fmt.Fprintf(&b, "\nSelected: %s %s", l.EvaluatorName, scoreBadge(l.Score, fmt.Sprintf("%.2f", l.Score)))
		}
	}
	b.WriteString("\n" + dimStyle.Render("e evaluator filter · s status filter · enter view trace"))
	return b.String()
}

func (v *evaluatorsView) traceModal() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Trace Details"))
	b.WriteString("\n")
	if v.modalLoading {
		fmt.Fprintf(&b, "\n%s Fetching trace data...\n", v.spin.View())
		return modalStyle.Render(b.String())
	}

	t := v.modalTrace
	b.WriteString(dimStyle.Render("ID: "+t.TraceID) + "\n\n")
	fmt.Fprintf(&b, "Latency: %.0fms   Tokens: %d   Cost: $%.4f\n\n", t.LatencyMillis(), t.Tokens, t.Cost)

	prompt := t.Prompt()
	if prompt == "" {
		prompt = "No input data recorded"
	}
	response := t.Response()
	if response == "" {
		response = "No output data recorded"
	}
	b.WriteString(dimStyle.Render("Input Prompt") + "\n" + prompt + "\n\n")
	b.WriteString(dimStyle.Render("Model Output") + "\n" + response + "\n")
	if t.Context != "" {
		b.WriteString("\n" + dimStyle.Render("Retrieval Context") + "\n" + t.Context + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("esc close"))
	return modalStyle.Render(b.String())
}
