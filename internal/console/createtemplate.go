package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartfactory/llmops-console/internal/api"
	"github.com/smartfactory/llmops-console/internal/model"
	"github.com/smartfactory/llmops-console/internal/util"
)

// TemplateModels are the judge models a template may run on.
var TemplateModels = []string{"gpt-4o", "gpt-4o-mini", "gpt-4"}

// TemplateDraft is the template form state.
type TemplateDraft struct {
	Name        string
	Description string
	Model       string
	OutputType  string
	Prompt      string
}

// ValidateTemplateDraft requires a name and a prompt body; everything else
// has a usable default.
func ValidateTemplateDraft(draft TemplateDraft) error {
	if strings.TrimSpace(draft.Name) == "" {
		return errors.New("template name is required")
	}
	if strings.TrimSpace(draft.Prompt) == "" {
		return errors.New("prompt text is required")
	}
	return nil
}

// BuildTemplatePayload turns a validated draft into the POST payload. The
// machine id is derived from the display name and sent under both id keys.
// The declared input list is left empty: variables are not extracted from the
// prompt text, they are declared when an evaluator binds them.
func BuildTemplatePayload(draft TemplateDraft, now time.Time) model.TemplateCreate {
	id := util.MachineID(draft.Name)
	return model.TemplateCreate{
		ID:         id,
		TemplateID: id,
		Name:       strings.TrimSpace(draft.Name),
		Version:    "1",
		Desc:       strings.TrimSpace(draft.Description),
		Model:      draft.Model,
		OutputType: draft.OutputType,
		Inputs:     []string{},
		Template:   draft.Prompt,
		UpdatedAt:  now.UTC().Format(time.RFC3339),
	}
}

type templateCreatedMsg struct{ err error }

type templateRedirectMsg struct{}

type createTemplateView struct {
	client *api.Client
	logger *slog.Logger
	spin   spinner.Model

	form  *huh.Form
	draft TemplateDraft

	submitting bool
	created    bool
	errMsg     string
}

func newCreateTemplateView(client *api.Client, logger *slog.Logger) *createTemplateView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	v := &createTemplateView{
		client: client,
		logger: logger,
		spin:   sp,
		draft: TemplateDraft{
			Model:      "gpt-4o-mini",
			OutputType: "numeric",
		},
	}
	v.form = v.buildForm()
	return v
}

func (v *createTemplateView) buildForm() *huh.Form {
	modelOptions := make([]huh.Option[string], len(TemplateModels))
	for i, m := range TemplateModels {
		modelOptions[i] = huh.NewOption(m, m)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Template Name").
				Description("The template id is derived from this name").
				Value(&v.draft.Name).
				Placeholder("Answer Relevance"),

			huh.NewInput().
				Title("Description").
				Value(&v.draft.Description),

			huh.NewSelect[string]().
				Title("Judge Model").
				Options(modelOptions...).
				Value(&v.draft.Model),

			huh.NewSelect[string]().
				Title("Output Type").
				Options(
					huh.NewOption("Numeric score (0.0-1.0)", "numeric"),
					huh.NewOption("Binary pass/fail", "binary"),
				).
				Value(&v.draft.OutputType),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Prompt").
				Description("Judge instructions; reference inputs as {{variable}}").
				Value(&v.draft.Prompt).
				CharLimit(4000),
		),
	).WithTheme(huh.ThemeCharm())
}

func (v *createTemplateView) capturesInput() bool { return true }

func (v *createTemplateView) Init() tea.Cmd {
	return v.form.Init()
}

func (v *createTemplateView) submit() tea.Cmd {
	payload := BuildTemplatePayload(v.draft, time.Now())
	return func() tea.Msg {
		err := v.client.CreateTemplate(context.Background(), payload)
		if err != nil {
			v.logger.Warn("create template", "template_id", payload.TemplateID, "error", err)
		}
		return templateCreatedMsg{err: err}
	}
}

func (v *createTemplateView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case templateCreatedMsg:
		v.submitting = false
		if msg.err != nil {
			v.errMsg = "Failed to create template: " + msg.err.Error()
			return v, nil
		}
		v.created = true
		// Let the success banner show briefly before returning to the
		// templates tab.
		return v, tea.Tick(1200*time.Millisecond, func(time.Time) tea.Msg {
			return templateRedirectMsg{}
		})

	case templateRedirectMsg:
		return v, navigateWithState(routeEvaluators, navState{tab: tabTemplates})

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		if v.submitting {
			return v, cmd
		}
		return v, nil

	case tea.KeyMsg:
		if msg.String() == "esc" && !v.submitting && !v.created {
			return v, navigateWithState(routeEvaluators, navState{tab: tabTemplates})
		}
		if v.form.State == huh.StateCompleted && v.errMsg != "" {
			if msg.String() == "enter" {
				v.errMsg = ""
				v.submitting = true
				return v, tea.Batch(v.submit(), v.spin.Tick)
			}
			return v, nil
		}
	}

	if v.submitting || v.created {
		return v, nil
	}

	updated, cmd := v.form.Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		v.form = f
	}
	if v.form.State != huh.StateCompleted {
		return v, cmd
	}

	if err := ValidateTemplateDraft(v.draft); err != nil {
		v.errMsg = err.Error()
		v.form = v.buildForm()
		return v, v.form.Init()
	}
	v.errMsg = ""
	v.submitting = true
	return v, tea.Batch(v.submit(), v.spin.Tick)
}

func (v *createTemplateView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Template"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render("Reusable judge prompt for evaluators"))
	b.WriteString("\n\n")

	switch {
	case v.created:
		b.WriteString(successStyle.Render("Template created."))
		b.WriteString("\n" + dimStyle.Render("Returning to templates..."))
	case v.submitting:
		fmt.Fprintf(&b, "%s Creating template...\n", v.spin.View())
	default:
		b.WriteString(v.form.View())
	}

	if v.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(v.errMsg))
		if v.form.State == huh.StateCompleted {
			b.WriteString("\n" + dimStyle.Render("enter retry · esc cancel"))
		}
	}
	if !v.created {
		b.WriteString("\n" + dimStyle.Render("esc back to templates"))
	}
	return b.String()
}
