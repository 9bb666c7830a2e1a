package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pixery/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg {
				return SwitchToGalleryMsg{}
			}
		}
	}

	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Pixery Help"))
	b.WriteString("\n\n")

	b.WriteString(styles.Subtitle.Render("Image generation gallery"))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Navigation"))
	b.WriteString("\n")
	b.WriteString(helpLine("j / k / ↑ / ↓", "Move up/down"))
	b.WriteString(helpLine("pgup / pgdn", "Page up/down"))
	b.WriteString(helpLine("g / G", "Top / bottom"))
	b.WriteString(helpLine("Enter", "Open detail"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Marking"))
	b.WriteString("\n")
	b.WriteString(helpLine("space", "Mark / unmark record"))
	b.WriteString(helpLine("v", "Mark range from anchor"))
	b.WriteString(helpLine("esc", "Clear marks"))
	b.WriteString(helpLine("x", "Compare two marked records"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Actions"))
	b.WriteString("\n")
	b.WriteString(helpLine("s", "Toggle star"))
	b.WriteString(helpLine("t", "Add tags (marked or focused)"))
	b.WriteString(helpLine("T", "Set title"))
	b.WriteString(helpLine("c", "Add to collection"))
	b.WriteString(helpLine("d", "Trash (marked or focused)"))
	b.WriteString(helpLine("u", "Restore (in trash view)"))
	b.WriteString(helpLine("n", "Generate a new image"))
	b.WriteString(helpLine("e", "Use marked images as references"))
	b.WriteString(helpLine("R", "Regenerate marked records"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Views and filters"))
	b.WriteString("\n")
	b.WriteString(helpLine("/", "Search prompts"))
	b.WriteString(helpLine("f", "Filter by tags (- excludes)"))
	b.WriteString(helpLine("*", "Toggle starred-only"))
	b.WriteString(helpLine("D", "Toggle trash view"))
	b.WriteString(helpLine("r", "Refresh"))
	b.WriteString(helpLine("J", "Dismiss failed jobs"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("General"))
	b.WriteString("\n")
	b.WriteString(helpLine("?", "Toggle help"))
	b.WriteString(helpLine("q / Ctrl+C", "Quit"))
	b.WriteString("\n")

	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}
