package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartfactory/llmops-console/internal/api"
	"github.com/smartfactory/llmops-console/internal/model"
	"github.com/smartfactory/llmops-console/internal/util"
)

// datasetDescriptions decorates known gold sets; everything else gets the
// generic fallback. Presentation-only, never sent back to the backend.
var datasetDescriptions = map[string]string{
	"qa_golden_set":             "Curated set of 150 high-quality question-answer pairs for evaluation",
	"safety_critical_scenarios": "Edge cases and safety-critical queries requiring accurate responses",
	"multi_hop_reasoning":       "Complex queries requiring multi-step reasoning and document synthesis",
}

const genericDatasetDescription = "Custom dataset for localized model evaluation and testing"

// DescribeDataset returns the presentation description for a dataset name.
func DescribeDataset(name string) string {
	if d, ok := datasetDescriptions[name]; ok {
		return d
	}
	return genericDatasetDescription
}

// FilterItems returns the items whose id, question, or category contains the
// search term, case-insensitively. An empty term passes everything.
func FilterItems(items []model.DatasetItem, term string) []model.DatasetItem {
	if term == "" {
		return items
	}
	needle := strings.ToLower(term)
	out := make([]model.DatasetItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.ID), needle) ||
			strings.Contains(strings.ToLower(item.Input.Question), needle) ||
			strings.Contains(strings.ToLower(item.Category), needle) {
			out = append(out, item)
		}
	}
	return out
}

type datasetsLoadedMsg struct{ datasets []model.Dataset }

type datasetItemsLoadedMsg struct {
	name  string
	items []model.DatasetItem
}

type runStartedMsg struct {
	name string
	err  error
}

// datasetsView browses the gold-set catalog: dataset list on the left, item
// cards on the right, with client-side search and a fire-and-forget
// evaluation trigger per dataset.
type datasetsView struct {
	client  *api.Client
	logger  *slog.Logger
	spin    spinner.Model
	loading bool

	datasets []model.Dataset
	selected int
	items    []model.DatasetItem
	itemsFor string

	search    textinput.Model
	searching bool
	cursor    int

	// running tracks in-flight evaluation runs keyed by dataset name, so the
	// trigger stays disabled for the duration of the call.
	running map[string]bool
	notice  string
}

func newDatasetsView(client *api.Client, logger *slog.Logger) *datasetsView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	search := textinput.New()
	search.Placeholder = "Search items..."
	search.CharLimit = 80
	search.Width = 32

	return &datasetsView{
		client:  client,
		logger:  logger,
		spin:    sp,
		search:  search,
		running: make(map[string]bool),
	}
}

func (v *datasetsView) capturesInput() bool { return v.searching }

func (v *datasetsView) Init() tea.Cmd {
	v.loading = true
	return tea.Batch(v.fetchDatasets(), v.spin.Tick)
}

func (v *datasetsView) fetchDatasets() tea.Cmd {
	return func() tea.Msg {
		raw, err := v.client.Datasets(context.Background())
		if err != nil {
			v.logger.Warn("fetch datasets", "error", err)
		}
		return datasetsLoadedMsg{datasets: api.DecodeList[model.Dataset](raw, "datasets")}
	}
}

func (v *datasetsView) fetchItems(name string) tea.Cmd {
	return func() tea.Msg {
		raw, err := v.client.DatasetItems(context.Background(), name)
		if err != nil {
			v.logger.Warn("fetch dataset items", "dataset", name, "error", err)
		}
		return datasetItemsLoadedMsg{name: name, items: api.DecodeList[model.DatasetItem](raw, "items")}
	}
}

func (v *datasetsView) triggerRun(name string) tea.Cmd {
	return func() tea.Msg {
		err := v.client.RunDataset(context.Background(), name)
		if err != nil {
			v.logger.Warn("run evaluation", "dataset", name, "error", err)
		}
		return runStartedMsg{name: name, err: err}
	}
}

func (v *datasetsView) selectedName() string {
	if v.selected >= 0 && v.selected < len(v.datasets) {
		return v.datasets[v.selected].Name
	}
	return ""
}

func (v *datasetsView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case datasetsLoadedMsg:
		v.loading = false
		v.datasets = msg.datasets
		for i := range v.datasets {
			v.datasets[i].Description = DescribeDataset(v.datasets[i].Name)
		}
		// Auto-select the first dataset so the items pane is never blank.
		if len(v.datasets) > 0 {
			v.selected = 0
			return v, v.fetchItems(v.datasets[0].Name)
		}
		return v, nil

	case datasetItemsLoadedMsg:
		if msg.name != v.selectedName() {
			// Selection moved on while this fetch was outstanding.
			return v, nil
		}
		v.items = msg.items
		v.itemsFor = msg.name
		v.cursor = 0
		return v, nil

	case runStartedMsg:
		delete(v.running, msg.name)
		if msg.err != nil {
			v.notice = errorStyle.Render("Failed to trigger evaluation for " + msg.name)
		} else {
			v.notice = successStyle.Render("Evaluation triggered for " + msg.name)
		}
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		if v.loading || len(v.running) > 0 {
			return v, cmd
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *datasetsView) handleKey(msg tea.KeyMsg) (view, tea.Cmd) {
	if v.searching {
		switch msg.String() {
		case "enter", "esc":
			v.searching = false
			v.search.Blur()
			return v, nil
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		v.cursor = 0
		return v, cmd
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			return v, v.fetchItems(v.selectedName())
		}
	case "down", "j":
		if v.selected < len(v.datasets)-1 {
			v.selected++
			return v, v.fetchItems(v.selectedName())
		}
	case "pgup":
		if v.cursor > 0 {
			v.cursor--
		}
	case "pgdown":
		if v.cursor < len(v.visibleItems())-1 {
			v.cursor++
		}
	case "/":
		v.searching = true
		v.search.Focus()
		return v, textinput.Blink
	case "r":
		name := v.selectedName()
		if name != "" && !v.running[name] {
			v.running[name] = true
			v.notice = ""
			return v, tea.Batch(v.triggerRun(name), v.spin.Tick)
		}
	}
	return v, nil
}

func (v *datasetsView) visibleItems() []model.DatasetItem {
	return FilterItems(v.items, v.search.Value())
}

func (v *datasetsView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Datasets"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render("Gold set evaluation and test datasets"))
	b.WriteString("\n\n")

	if v.loading {
		fmt.Fprintf(&b, "%s Loading...\n", v.spin.View())
		return b.String()
	}
	if len(v.datasets) == 0 {
		b.WriteString(dimStyle.Render("No datasets available."))
		return b.String()
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, v.catalogPane(), v.itemsPane()))
	b.WriteString("\n")
	if v.notice != "" {
		b.WriteString(v.notice + "\n")
	}
	b.WriteString(dimStyle.Render("up/down select dataset · / search · r run evaluation · pgup/pgdn items"))
	return b.String()
}

func (v *datasetsView) catalogPane() string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("YOUR DATASETS") + "\n\n")
	for i, ds := range v.datasets {
		name := util.TitleFromID(ds.Name)
		if i == v.selected {
			b.WriteString(navActiveStyle.Render("> "+name) + "\n")
		} else {
			b.WriteString(navItemStyle.Render("  "+name) + "\n")
		}
		b.WriteString("  " + dimStyle.Render(truncate(ds.Description, 40)) + "\n\n")
	}
	return cardStyle.Render(b.String())
}

func (v *datasetsView) itemsPane() string {
	name := v.selectedName()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", titleStyle.Render(util.TitleFromID(name)), subtitleStyle.Render(DescribeDataset(name)))

	if v.running[name] {
		fmt.Fprintf(&b, "%s Evaluation run in flight...\n\n", v.spin.View())
	} else {
		b.WriteString(dimStyle.Render("r to run evaluation") + "\n\n")
	}

	if v.searching || v.search.Value() != "" {
		b.WriteString(v.search.View() + "\n\n")
	}

	items := v.visibleItems()
	if len(items) == 0 {
		if term := v.search.Value(); term != "" {
			fmt.Fprintf(&b, "%s\n", dimStyle.Render(`No dataset items found for "`+term+`"`))
		} else {
			b.WriteString(dimStyle.Render("No items in this dataset.") + "\n")
		}
		return b.String()
	}

	if v.cursor >= len(items) {
		v.cursor = 0
	}
	item := items[v.cursor]
	fmt.Fprintf(&b, "%s %s\n\n", dimStyle.Render(fmt.Sprintf("Item %d/%d", v.cursor+1, len(items))), successStyle.Render("VERIFIED"))

	var card strings.Builder
	card.WriteString(dimStyle.Render("Input Query") + "\n" + item.Input.Question + "\n\n")
	card.WriteString(dimStyle.Render("Expected Output") + "\n" + item.Expected.Answer + "\n\n")
	fmt.Fprintf(&card, "Difficulty: %s   Domain: %s", item.Metadata.Difficulty, orDefault(item.Metadata.Domain, "knowledge base"))
	if item.Metadata.RiskLevel == "high" || item.Metadata.RiskLevel == "critical" {
		fmt.Fprintf(&card, "   %s", warnStyle.Render("Risk: "+item.Metadata.RiskLevel))
	}
	if item.Metadata.VerifiedBy != "" {
		fmt.Fprintf(&card, "   %s", dimStyle.Render("Verified by "+item.Metadata.VerifiedBy))
	}
	b.WriteString(cardStyle.Render(card.String()))
	return b.String()
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
