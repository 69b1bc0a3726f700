package console

import "github.com/charmbracelet/lipgloss"

// The palette follows the product chrome: teal accent on a dark shell.
var (
	accentColor = lipgloss.Color("43")
	dimColor    = lipgloss.Color("241")
	warnColor   = lipgloss.Color("214")
	errColor    = lipgloss.Color("196")
	goodColor   = lipgloss.Color("42")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(dimColor)
	dimStyle      = lipgloss.NewStyle().Foreground(dimColor)
	successStyle  = lipgloss.NewStyle().Foreground(goodColor)
	warnStyle     = lipgloss.NewStyle().Foreground(warnColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errColor)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("238")).
			PaddingRight(2).
			MarginRight(2)

	navItemStyle   = lipgloss.NewStyle().Foreground(dimColor)
	navActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 2)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accentColor).
			Padding(1, 3)

	tabStyle       = lipgloss.NewStyle().Foreground(dimColor).Padding(0, 2)
	tabActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 2).Underline(true)

	badgeGood = lipgloss.NewStyle().Foreground(goodColor)
	badgeWarn = lipgloss.NewStyle().Foreground(warnColor)
	badgeBad  = lipgloss.NewStyle().Foreground(errColor)

	statusBarStyle = lipgloss.NewStyle().Foreground(dimColor).
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("238"))
)

// scoreBadge renders a numeric score with the banding the log table uses:
// >= 0.8 good, >= 0.5 warn, below that bad.
func scoreBadge(score float64, text string) string {
	switch {
	case score >= 0.8:
		return badgeGood.Render(text)
	case score >= 0.5:
		return badgeWarn.Render(text)
	default:
		return badgeBad.Render(text)
	}
}
