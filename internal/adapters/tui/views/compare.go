package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pixery/internal/adapters/tui/styles"
	"pixery/internal/domain"
	"pixery/internal/ports"
)

// CompareKeyMap defines key bindings for the compare view
type CompareKeyMap struct {
	Back key.Binding
}

var CompareKeys = CompareKeyMap{
	Back: key.NewBinding(
		key.WithKeys("esc", "q", "x"),
		key.WithHelp("esc/q", "back"),
	),
}

// CompareModel shows two records side by side, the gesture for judging
// two variants of the same prompt against each other.
type CompareModel struct {
	ViewState
	gallery ports.Gallery
	leftID  int64
	rightID int64
	left    *domain.Record
	right   *domain.Record
}

// NewCompareModel creates a new compare view model
func NewCompareModel(gallery ports.Gallery) *CompareModel {
	return &CompareModel{gallery: gallery}
}

// SetPair points the view at the two records to compare.
func (m *CompareModel) SetPair(a, b int64) {
	m.leftID = a
	m.rightID = b
	m.left = nil
	m.right = nil
	m.ClearMessage()
}

// Init loads both records.
func (m *CompareModel) Init() tea.Cmd {
	return m.load
}

type pairLoadedMsg struct {
	left, right *domain.Record
}

func (m *CompareModel) load() tea.Msg {
	left, err := m.gallery.Get(context.Background(), m.leftID)
	if err != nil {
		return errMsg{err}
	}
	right, err := m.gallery.Get(context.Background(), m.rightID)
	if err != nil {
		return errMsg{err}
	}
	if left == nil || right == nil {
		return errMsg{fmt.Errorf("a compared record no longer exists")}
	}
	return pairLoadedMsg{left, right}
}

// Update handles messages for the compare view
func (m *CompareModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case pairLoadedMsg:
		m.left = msg.left
		m.right = msg.right
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, CompareKeys.Back) {
			return m, func() tea.Msg { return SwitchToGalleryMsg{} }
		}
	}

	return m, nil
}

// View renders the compare view
func (m *CompareModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Compare"))
	b.WriteString("\n\n")

	if m.Message != "" {
		b.WriteString(styles.ErrorMsg.Render(m.Message))
		return styles.App.Render(b.String())
	}
	if m.left == nil || m.right == nil {
		b.WriteString(styles.MutedText.Render("Loading..."))
		return styles.App.Render(b.String())
	}

	paneWidth := max(m.Width/2-6, 30)
	left := styles.ComparePane.Width(paneWidth).Render(comparePane(m.left))
	right := styles.ComparePane.Width(paneWidth).Render(comparePane(m.right))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))

	b.WriteString("\n\n")
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" back"))

	return styles.App.Render(b.String())
}

func comparePane(rec *domain.Record) string {
	var b strings.Builder
	b.WriteString(styles.InputLabel.Render(fmt.Sprintf("#%d", rec.ID)))
	if rec.Starred {
		b.WriteString(" " + styles.StarGlyph.String())
	}
	b.WriteString("\n\n")
	b.WriteString(rec.Prompt)
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render(rec.Model))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(rec.Timestamp))
	if rec.Seed != "" {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("seed " + rec.Seed))
	}
	if rec.CostEstimateUSD > 0 {
		b.WriteString("\n")
		b.WriteString(styles.CostText.Render(fmt.Sprintf("$%.4f", rec.CostEstimateUSD)))
	}
	if len(rec.Tags) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.TagText.Render(strings.Join(rec.Tags, ", ")))
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(rec.ImagePath))
	return b.String()
}
