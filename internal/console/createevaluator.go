package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartfactory/llmops-console/internal/api"
	"github.com/smartfactory/llmops-console/internal/model"
	"github.com/smartfactory/llmops-console/internal/util"
)

// MappingSources are the trace fields an evaluator input variable can bind to.
var MappingSources = []string{"trace.input", "trace.output", "span.retrieval.documents"}

var (
	errNoTemplate = errors.New("select an evaluation template")
	errNoName     = errors.New("evaluator name is required")
)

// EvaluatorDraft is the form state before normalization into the POST payload.
type EvaluatorDraft struct {
	Name       string
	TemplateID string
	Enabled    bool
	Target     string
	Mapping    map[string]string
	// SamplingPct is entered as a percentage, DelaySec in seconds; both are
	// converted on submit.
	SamplingPct float64
	DelaySec    float64
}

// ValidateEvaluatorDraft checks the draft against the selected template.
// Checks run in a fixed order so the first error reported is always the most
// upstream one: template selection, then name, then variable mapping.
func ValidateEvaluatorDraft(draft EvaluatorDraft, templates []model.Template) error {
	var tmpl *model.Template
	for i := range templates {
		if templates[i].TemplateID == draft.TemplateID {
			tmpl = &templates[i]
			break
		}
	}
	if tmpl == nil {
		return errNoTemplate
	}
	if strings.TrimSpace(draft.Name) == "" {
		return errNoName
	}
	for _, in := range tmpl.DeclaredInputs() {
		if draft.Mapping[in] == "" {
			return fmt.Errorf("map template variable {{%s}} to a trace field", in)
		}
	}
	return nil
}

// BuildEvaluatorPayload normalizes a validated draft into the backend payload:
// sampling percentage becomes a 0-1 rate, the delay becomes milliseconds, and
// the score name is the machine form of the display name.
func BuildEvaluatorPayload(draft EvaluatorDraft, templates []model.Template) model.EvaluatorCreate {
	tmplModel := ""
	for _, t := range templates {
		if t.TemplateID == draft.TemplateID {
			tmplModel = t.Model
			break
		}
	}
	if tmplModel == "" {
		tmplModel = "gpt-4o-mini"
	}
	status := "disabled"
	if draft.Enabled {
		status = "enabled"
	}
	mapping := make(map[string]string, len(draft.Mapping))
	for k, v := range draft.Mapping {
		mapping[k] = v
	}
	return model.EvaluatorCreate{
		ScoreName: util.MachineID(draft.Name),
		Template: model.TemplateRef{
			ID:            draft.TemplateID,
			Model:         tmplModel,
			PromptVersion: "v1",
		},
		Status:          status,
		Target:          draft.Target,
		VariableMapping: mapping,
		Execution: model.ExecutionSettings{
			SamplingRate: draft.SamplingPct / 100,
			DelayMS:      int(draft.DelaySec * 1000),
		},
	}
}

type evaluatorCreatedMsg struct{ err error }

// Form phases: pick the template first, because the second phase's mapping
// fields depend on the template's declared inputs.
const (
	phaseBasics = iota
	phaseMapping
	phaseSubmitting
)

type createEvaluatorView struct {
	client *api.Client
	logger *slog.Logger
	spin   spinner.Model

	loading   bool
	templates []model.Template

	phase int
	form  *huh.Form
	draft EvaluatorDraft

	// Form bindings; huh writes into these and the draft is assembled when a
	// phase completes.
	samplingStr string
	delayStr    string
	mappingVals []string

	errMsg string
}

func newCreateEvaluatorView(client *api.Client, logger *slog.Logger) *createEvaluatorView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	return &createEvaluatorView{
		client: client,
		logger: logger,
		spin:   sp,
		draft: EvaluatorDraft{
			Enabled:     true,
			Target:      "traces",
			Mapping:     make(map[string]string),
			SamplingPct: 100,
		},
		samplingStr: "100",
		delayStr:    "0",
	}
}

func (v *createEvaluatorView) capturesInput() bool { return true }

func (v *createEvaluatorView) Init() tea.Cmd {
	v.loading = true
	return tea.Batch(v.fetchTemplates(), v.spin.Tick)
}

func (v *createEvaluatorView) fetchTemplates() tea.Cmd {
	return func() tea.Msg {
		raw, err := v.client.Templates(context.Background())
		if err != nil {
			v.logger.Warn("fetch templates", "error", err)
		}
		return templatesLoadedMsg{templates: api.DecodeList[model.Template](raw, "templates")}
	}
}

func (v *createEvaluatorView) basicsForm() *huh.Form {
	tmplOptions := make([]huh.Option[string], 0, len(v.templates))
	for _, t := range v.templates {
		name := t.Name
		if name == "" {
			name = util.TitleFromID(t.TemplateID)
		}
		tmplOptions = append(tmplOptions, huh.NewOption(name, t.TemplateID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Evaluator Name").
				Description("Display name; the score name is derived from it").
				Value(&v.draft.Name).
				Placeholder("Hallucination Detection"),

			huh.NewSelect[string]().
				Title("Evaluation Template").
				Options(tmplOptions...).
				Value(&v.draft.TemplateID),

			huh.NewSelect[string]().
				Title("Target").
				Options(
					huh.NewOption("Live Traces", "traces"),
					huh.NewOption("Dataset Runs", "dataset"),
				).
				Value(&v.draft.Target),

			huh.NewConfirm().
				Title("Enable Immediately?").
				Value(&v.draft.Enabled).
				Affirmative("Yes").
				Negative("No"),
		),
	).WithTheme(huh.ThemeCharm())
}

func (v *createEvaluatorView) mappingForm() *huh.Form {
	inputs := v.selectedInputs()
	v.mappingVals = make([]string, len(inputs))
	fields := make([]huh.Field, 0, len(inputs)+2)
	for i, in := range inputs {
		srcOptions := make([]huh.Option[string], len(MappingSources))
		for j, src := range MappingSources {
			srcOptions[j] = huh.NewOption(src, src)
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Map {{"+in+"}}").
			Options(srcOptions...).
			Value(&v.mappingVals[i]))
	}
	fields = append(fields,
		huh.NewInput().
			Title("Sampling Rate (%)").
			Description("0-100; percentage of targets evaluated").
			Value(&v.samplingStr).
			Validate(validatePercent),
		huh.NewInput().
			Title("Delay (seconds)").
			Description("0-30; wait before evaluating a new trace").
			Value(&v.delayStr).
			Validate(validateDelay),
	)
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCharm())
}

func (v *createEvaluatorView) selectedInputs() []string {
	for _, t := range v.templates {
		if t.TemplateID == v.draft.TemplateID {
			return t.DeclaredInputs()
		}
	}
	return nil
}

func validatePercent(s string) error {
	var pct float64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &pct); err != nil || pct < 0 || pct > 100 {
		return errors.New("enter a number between 0 and 100")
	}
	return nil
}

func validateDelay(s string) error {
	var sec float64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &sec); err != nil || sec < 0 || sec > 30 {
		return errors.New("enter a number between 0 and 30")
	}
	return nil
}

func (v *createEvaluatorView) submit() tea.Cmd {
	payload := BuildEvaluatorPayload(v.draft, v.templates)
	return func() tea.Msg {
		err := v.client.CreateEvaluator(context.Background(), payload)
		if err != nil {
			v.logger.Warn("create evaluator", "score_name", payload.ScoreName, "error", err)
		}
		return evaluatorCreatedMsg{err: err}
	}
}

func (v *createEvaluatorView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case templatesLoadedMsg:
		v.loading = false
		v.templates = msg.templates
		if len(v.templates) == 0 {
			v.errMsg = "No evaluation templates available. Create a template first."
			return v, nil
		}
		v.form = v.basicsForm()
		return v, v.form.Init()

	case evaluatorCreatedMsg:
		if msg.err != nil {
			// Keep the completed draft so the user can retry without
			// re-entering anything.
			v.phase = phaseMapping
			v.errMsg = "Failed to create evaluator: " + msg.err.Error()
			return v, nil
		}
		return v, navigate(routeEvaluators)

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		if v.loading || v.phase == phaseSubmitting {
			return v, cmd
		}
		return v, nil

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return v, navigate(routeEvaluators)
		}
		if v.errMsg != "" && v.form == nil {
			return v, nil
		}
		if v.phase == phaseMapping && v.form != nil && v.form.State == huh.StateCompleted {
			// A failed submit leaves the completed form on screen; enter
			// retries it.
			if msg.String() == "enter" {
				return v.startSubmit()
			}
			return v, nil
		}
	}

	if v.form == nil || v.phase == phaseSubmitting {
		return v, nil
	}

	updated, cmd := v.form.Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		v.form = f
	}
	if v.form.State != huh.StateCompleted {
		return v, cmd
	}

	switch v.phase {
	case phaseBasics:
		// Mapping errors are expected here; the mapping phase comes next.
		if err := ValidateEvaluatorDraft(v.draft, v.templates); errors.Is(err, errNoTemplate) || errors.Is(err, errNoName) {
			v.errMsg = err.Error()
			v.form = v.basicsForm()
			return v, v.form.Init()
		}
		v.errMsg = ""
		v.phase = phaseMapping
		v.form = v.mappingForm()
		return v, v.form.Init()

	case phaseMapping:
		inputs := v.selectedInputs()
		for i, in := range inputs {
			v.draft.Mapping[in] = v.mappingVals[i]
		}
		fmt.Sscanf(strings.TrimSpace(v.samplingStr), "%f", &v.draft.SamplingPct)
		fmt.Sscanf(strings.TrimSpace(v.delayStr), "%f", &v.draft.DelaySec)
		if err := ValidateEvaluatorDraft(v.draft, v.templates); err != nil {
			v.errMsg = err.Error()
			return v, nil
		}
		return v.startSubmit()
	}
	return v, cmd
}

func (v *createEvaluatorView) startSubmit() (view, tea.Cmd) {
	v.errMsg = ""
	v.phase = phaseSubmitting
	return v, tea.Batch(v.submit(), v.spin.Tick)
}

func (v *createEvaluatorView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Evaluator"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render("Automated scoring for incoming traces"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		fmt.Fprintf(&b, "%s Loading templates...\n", v.spin.View())
	case v.phase == phaseSubmitting:
		fmt.Fprintf(&b, "%s Creating evaluator...\n", v.spin.View())
	case v.form != nil:
		b.WriteString(v.form.View())
	}

	if v.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(v.errMsg))
		if v.phase == phaseMapping && v.form != nil && v.form.State == huh.StateCompleted {
			b.WriteString("\n" + dimStyle.Render("enter retry · esc cancel"))
		}
	}
	b.WriteString("\n" + dimStyle.Render("esc back to evaluators"))
	return b.String()
}
