package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/showreel/pkg/catalog"
	"gitlab.com/tinyland/lab/showreel/pkg/theme"
)

// styles are the lipgloss styles derived from the application theme.
type styles struct {
	base      lipgloss.Style
	title     lipgloss.Style
	section   lipgloss.Style
	tab       lipgloss.Style
	tabActive lipgloss.Style
	row       lipgloss.Style
	rowActive lipgloss.Style
	dim       lipgloss.Style
	link      lipgloss.Style
	pending   lipgloss.Style
	failed    lipgloss.Style
	frame     lipgloss.Style
	status    lipgloss.Style
}

func hexColor(hex string) lipgloss.TerminalColor {
	if hex == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

func newStyles(t theme.Theme) styles {
	return styles{
		base:      lipgloss.NewStyle().Foreground(hexColor(t.Foreground)),
		title:     lipgloss.NewStyle().Bold(true).Foreground(hexColor(t.Title)),
		section:   lipgloss.NewStyle().Bold(true).Foreground(hexColor(t.Dim)).MarginTop(1),
		tab:       lipgloss.NewStyle().Foreground(hexColor(t.Dim)).Padding(0, 1),
		tabActive: lipgloss.NewStyle().Bold(true).Foreground(hexColor(t.Background)).Background(hexColor(t.Accent)).Padding(0, 1),
		row:       lipgloss.NewStyle().Foreground(hexColor(t.Foreground)),
		rowActive: lipgloss.NewStyle().Bold(true).Foreground(hexColor(t.Accent)),
		dim:       lipgloss.NewStyle().Foreground(hexColor(t.Dim)),
		link:      lipgloss.NewStyle().Underline(true).Foreground(hexColor(t.Link)),
		pending:   lipgloss.NewStyle().Foreground(hexColor(t.Pending)),
		failed:    lipgloss.NewStyle().Italic(true).Foreground(hexColor(t.Error)),
		frame:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(hexColor(t.Border)),
		status:    lipgloss.NewStyle().Foreground(hexColor(t.Dim)),
	}
}

// film layers an item's palette over the chrome for its detail pane.
func (s styles) film(p catalog.Palette) styles {
	s.title = s.title.Foreground(lipgloss.Color(p.Accent))
	s.base = s.base.Foreground(lipgloss.Color(p.Text))
	s.frame = s.frame.BorderForeground(lipgloss.Color(p.Accent))
	return s
}

func newHelp(t theme.Theme) help.Model {
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(hexColor(t.HelpKey))
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(hexColor(t.HelpDesc))
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = h.Styles.ShortDesc
	return h
}
