package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartfactory/llmops-console/internal/auth"
)

// loginView is the only unprotected route. It drives the device-code
// interaction: enter starts it, the user code is displayed while the provider
// polls, and success navigates to the dashboard. Provider failures re-enable
// the sign-in action with a visible message; they never crash the shell.
type loginView struct {
	gate    *auth.Gate
	spin    spinner.Model
	busy    bool
	errMsg  string
	verURI  string
	usrCode string
}

type loginPromptMsg struct {
	verificationURI string
	userCode        string
}

type loginDoneMsg struct {
	err error
}

func newLoginView(gate *auth.Gate) *loginView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)
	return &loginView{gate: gate, spin: sp}
}

func (v *loginView) Init() tea.Cmd { return nil }

func (v *loginView) startLogin() tea.Cmd {
	promptCh := make(chan loginPromptMsg, 1)
	doneCh := make(chan loginDoneMsg, 1)

	go func() {
		defer close(promptCh)
		_, err := v.gate.Login(context.Background(), func(uri, code string) {
			promptCh <- loginPromptMsg{verificationURI: uri, userCode: code}
		})
		doneCh <- loginDoneMsg{err: err}
	}()

	waitPrompt := func() tea.Msg {
		if msg, ok := <-promptCh; ok {
			return msg
		}
		return nil
	}
	waitDone := func() tea.Msg { return <-doneCh }

	return tea.Batch(waitPrompt, waitDone, v.spin.Tick)
}

func (v *loginView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && !v.busy {
			v.busy = true
			v.errMsg = ""
			v.verURI, v.usrCode = "", ""
			return v, v.startLogin()
		}

	case loginPromptMsg:
		v.verURI = msg.verificationURI
		v.usrCode = msg.userCode
		return v, nil

	case loginDoneMsg:
		v.busy = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		return v, navigate(routeDashboard)

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *loginView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Smart Factory Admin Login"))
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Sign in with your corporate Microsoft account."))
	b.WriteString("\n\n")

	if v.errMsg != "" {
		b.WriteString(errorStyle.Render("Login failed: " + v.errMsg))
		b.WriteString("\n\n")
	}

	switch {
	case v.busy && v.usrCode != "":
		fmt.Fprintf(&b, "%s Open %s and enter code %s\n",
			v.spin.View(),
			titleStyle.Render(v.verURI),
			titleStyle.Render(v.usrCode))
		b.WriteString(dimStyle.Render("Waiting for the identity provider..."))
	case v.busy:
		fmt.Fprintf(&b, "%s Authenticating...", v.spin.View())
	default:
		b.WriteString("Press " + titleStyle.Render("enter") + " to sign in")
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("q quit"))
	return cardStyle.Render(b.String())
}
