package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pixery/internal/adapters/tui/styles"
	"pixery/internal/domain"
	"pixery/internal/ports"
)

// DetailKeyMap defines key bindings for the detail view
type DetailKeyMap struct {
	Back       key.Binding
	Star       key.Binding
	CopyPrompt key.Binding
	CopyPath   key.Binding
	Open       key.Binding
}

var DetailKeys = DetailKeyMap{
	Back: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc/q", "back"),
	),
	Star: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "star"),
	),
	CopyPrompt: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy prompt"),
	),
	CopyPath: key.NewBinding(
		key.WithKeys("Y"),
		key.WithHelp("Y", "copy image path"),
	),
	Open: key.NewBinding(
		key.WithKeys("o", "enter"),
		key.WithHelp("o", "open image"),
	),
}

// DetailModel shows the full metadata of one record.
type DetailModel struct {
	ViewState
	gallery ports.Gallery
	archive ports.Archive
	id      int64
	record  *domain.Record
}

// NewDetailModel creates a new detail view model
func NewDetailModel(gallery ports.Gallery, archive ports.Archive) *DetailModel {
	return &DetailModel{
		gallery: gallery,
		archive: archive,
	}
}

// SetRecord points the view at a record id. The record itself loads async.
func (m *DetailModel) SetRecord(id int64) {
	m.id = id
	m.record = nil
	m.ClearMessage()
}

// Init loads the record.
func (m *DetailModel) Init() tea.Cmd {
	return m.load
}

type recordLoadedMsg struct {
	record *domain.Record
}

func (m *DetailModel) load() tea.Msg {
	rec, err := m.gallery.Get(context.Background(), m.id)
	if err != nil {
		return errMsg{err}
	}
	if rec == nil {
		return errMsg{fmt.Errorf("generation %d not found", m.id)}
	}
	return recordLoadedMsg{rec}
}

// Update handles messages for the detail view
func (m *DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case recordLoadedMsg:
		m.record = msg.record
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DetailKeys.Back):
			return m, func() tea.Msg { return SwitchToGalleryMsg{} }

		case key.Matches(msg, DetailKeys.Star):
			if m.record == nil {
				return m, nil
			}
			return m, m.toggleStar()

		case key.Matches(msg, DetailKeys.CopyPrompt):
			if m.record != nil {
				clipboard.WriteAll(m.record.Prompt)
				m.SetMessage("Prompt copied", false)
			}
			return m, nil

		case key.Matches(msg, DetailKeys.CopyPath):
			if m.record != nil {
				clipboard.WriteAll(m.archive.AbsPath(m.record.ImagePath))
				m.SetMessage("Image path copied", false)
			}
			return m, nil

		case key.Matches(msg, DetailKeys.Open):
			if m.record == nil {
				return m, nil
			}
			path := m.archive.AbsPath(m.record.ImagePath)
			return m, func() tea.Msg { return OpenViewerMsg{Path: path} }
		}
	}

	return m, nil
}

func (m *DetailModel) toggleStar() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.gallery.ToggleStar(context.Background(), m.id); err != nil {
			return errMsg{err}
		}
		rec, err := m.gallery.Get(context.Background(), m.id)
		if err != nil {
			return errMsg{err}
		}
		return recordLoadedMsg{rec}
	}
}

// View renders the detail view
func (m *DetailModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(fmt.Sprintf("Generation #%d", m.id)))
	b.WriteString("\n\n")

	rec := m.record
	if rec == nil {
		if m.Message != "" {
			b.WriteString(styles.ErrorMsg.Render(m.Message))
		} else {
			b.WriteString(styles.MutedText.Render("Loading..."))
		}
		return styles.App.Render(b.String())
	}

	if rec.Title != "" {
		b.WriteString(styles.InputLabel.Render(rec.Title))
		b.WriteString("\n\n")
	}

	b.WriteString(detailLine("Prompt", rec.Prompt))
	if rec.NegativePrompt != "" {
		b.WriteString(detailLine("Negative", rec.NegativePrompt))
	}
	b.WriteString(detailLine("Model", fmt.Sprintf("%s (%s)", rec.Model, rec.Provider)))
	b.WriteString(detailLine("Created", rec.Timestamp))
	b.WriteString(detailLine("Image", rec.ImagePath))
	if rec.Width > 0 {
		b.WriteString(detailLine("Size", fmt.Sprintf("%dx%d", rec.Width, rec.Height)))
	}
	if rec.Seed != "" {
		b.WriteString(detailLine("Seed", rec.Seed))
	}
	if rec.CostEstimateUSD > 0 {
		b.WriteString(detailLine("Cost", fmt.Sprintf("$%.4f", rec.CostEstimateUSD)))
	}
	if rec.GenerationSeconds > 0 {
		b.WriteString(detailLine("Took", fmt.Sprintf("%.1fs", rec.GenerationSeconds)))
	}
	if rec.Starred {
		b.WriteString(detailLine("Starred", styles.StarGlyph.String()))
	}
	if rec.Trashed() {
		b.WriteString(detailLine("Trashed", rec.TrashedAt))
	}
	if len(rec.Tags) > 0 {
		b.WriteString(detailLine("Tags", styles.TagText.Render(strings.Join(rec.Tags, ", "))))
	}
	if len(rec.Collections) > 0 {
		b.WriteString(detailLine("Collections", strings.Join(rec.Collections, ", ")))
	}
	for _, ref := range rec.References {
		b.WriteString(detailLine("Reference", ref.Path))
	}

	if m.Message != "" {
		b.WriteString("\n")
		if m.MessageErr {
			b.WriteString(styles.ErrorMsg.Render(m.Message))
		} else {
			b.WriteString(styles.Success.Render(m.Message))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s",
		styles.HelpKey.Render("o"),
		styles.HelpDesc.Render("open"),
		styles.HelpKey.Render("s"),
		styles.HelpDesc.Render("star"),
		styles.HelpKey.Render("y"),
		styles.HelpDesc.Render("copy prompt"),
		styles.HelpKey.Render("Y"),
		styles.HelpDesc.Render("copy path"),
		styles.HelpKey.Render("esc"),
		styles.HelpDesc.Render("back"),
	))

	return styles.App.Render(b.String())
}

func detailLine(label, value string) string {
	return styles.InputLabel.Render(padRight(label+":", 13)) + value + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
