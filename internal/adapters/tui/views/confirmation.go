package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pixery/internal/adapters/tui/styles"
)

// ConfirmKeyMap defines key bindings for confirmation prompts
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// Handle processes a key message against the confirmation bindings.
// Returns (handled, cmd) where handled is true if the key was processed.
func (k ConfirmKeyMap) Handle(msg tea.KeyMsg, onConfirm, onCancel func() tea.Cmd) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, k.Cancel):
		return true, onCancel()
	case key.Matches(msg, k.Confirm):
		return true, onConfirm()
	}
	return false, nil
}

// RenderConfirmPrompt renders the standard confirmation prompt
func RenderConfirmPrompt(question string) string {
	var b strings.Builder
	b.WriteString(question)
	b.WriteString(" ")
	b.WriteString(styles.HelpKey.Render("y"))
	b.WriteString(styles.HelpDesc.Render(" to confirm, "))
	b.WriteString(styles.HelpKey.Render("n"))
	b.WriteString(styles.HelpDesc.Render(" to cancel"))
	return b.String()
}
