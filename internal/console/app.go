// Package console implements the interactive admin shell: a sidebar-navigated
// set of views over the monitoring backend's REST resources. Each view owns
// its state exclusively; the only process-wide state is the identity session,
// which is constructed before the shell and injected read-only.
package console

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartfactory/llmops-console/internal/api"
	"github.com/smartfactory/llmops-console/internal/auth"
	"github.com/smartfactory/llmops-console/internal/config"
)

// Route names. The first five appear in the sidebar; the rest are reached
// from other views.
const (
	routeDashboard      = auth.RouteDashboard
	routeTraces         = "traces"
	routeEvaluators     = "evaluators"
	routeDatasets       = "datasets"
	routeAudit          = "audit"
	routeLogin          = auth.RouteLogin
	routeCreateEval     = "evaluators/new"
	routeCreateTemplate = "templates/new"
)

var sidebarRoutes = []struct {
	route string
	label string
	key   string
}{
	{routeDashboard, "Dashboard", "1"},
	{routeTraces, "Traces", "2"},
	{routeEvaluators, "Evaluators", "3"},
	{routeDatasets, "Datasets", "4"},
	{routeAudit, "Audit", "5"},
}

// navState carries navigation-provided state into the mounted view, e.g. the
// template-creation flow deep-linking back into the evaluators templates tab.
type navState struct {
	tab string
}

// navigateMsg asks the shell to mount a different view.
type navigateMsg struct {
	route string
	state navState
}

func navigate(route string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: route} }
}

func navigateWithState(route string, state navState) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: route, state: state} }
}

// view is one mounted page. Update returns the (possibly replaced) view.
type view interface {
	Init() tea.Cmd
	Update(tea.Msg) (view, tea.Cmd)
	View() string
}

// App is the navigation shell.
type App struct {
	cfg    *config.ProjectConfig
	client *api.Client
	gate   *auth.Gate
	logger *slog.Logger

	route  string
	active view
	width  int
	height int
}

func NewApp(cfg *config.ProjectConfig, client *api.Client, gate *auth.Gate, logger *slog.Logger) *App {
	a := &App{cfg: cfg, client: client, gate: gate, logger: logger}
	a.route, a.active = a.mount(routeDashboard, navState{})
	return a
}

func (a *App) Init() tea.Cmd {
	return a.active.Init()
}

// mount applies the route guard, constructs the view for the resulting
// route, and returns both.
func (a *App) mount(route string, state navState) (string, view) {
	_, authed := a.gate.Current()
	route = auth.Guard(authed, route)

	switch route {
	case routeLogin:
		return route, newLoginView(a.gate)
	case routeTraces:
		return route, newTracesView(a.client, a.logger)
	case routeEvaluators:
		return route, newEvaluatorsView(a.client, a.logger, state.tab)
	case routeDatasets:
		return route, newDatasetsView(a.client, a.logger)
	case routeAudit:
		return route, newAuditView(a.client, a.logger, a.cfg.Audit.ExportPath)
	case routeCreateEval:
		return route, newCreateEvaluatorView(a.client, a.logger)
	case routeCreateTemplate:
		return route, newCreateTemplateView(a.client, a.logger)
	default:
		return routeDashboard, newDashboardView(a.client, a.logger)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		// Fall through to the active view so tables can resize.

	case navigateMsg:
		a.route, a.active = a.mount(msg.route, msg.state)
		return a, a.active.Init()

	case tea.KeyMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}
	}

	next, cmd := a.active.Update(msg)
	a.active = next
	return a, cmd
}

// handleGlobalKey handles shell-level navigation. Views that capture text
// input mark themselves as such and receive every key.
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if capturer, ok := a.active.(interface{ capturesInput() bool }); ok && capturer.capturesInput() {
		return nil, false
	}

	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return tea.Quit, true
	default:
		for _, item := range sidebarRoutes {
			if key == item.key && a.route != item.route {
				return navigate(item.route), true
			}
		}
	}
	return nil, false
}

func (a *App) View() string {
	if a.route == routeLogin {
		return a.active.View()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, a.sidebar(), a.active.View())
	return lipgloss.JoinVertical(lipgloss.Left, body, a.statusBar())
}

func (a *App) sidebar() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("LLMOps Console"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Smart Factory Admin"))
	b.WriteString("\n\n")
	for _, item := range sidebarRoutes {
		style := navItemStyle
		marker := "  "
		if a.route == item.route {
			style = navActiveStyle
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, dimStyle.Render(item.key), style.Render(item.label))
	}
	return sidebarStyle.Render(b.String())
}

func (a *App) statusBar() string {
	account := "anonymous"
	if sess, ok := a.gate.Current(); ok {
		account = sess.Account
	}
	left := fmt.Sprintf(" %s · %s", account, a.client.BaseURL())
	right := "1-5 navigate · q quit "
	pad := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return statusBarStyle.Render(left + strings.Repeat(" ", pad) + right)
}
