package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pixery/internal/adapters/tui/styles"
	"pixery/internal/application/commands"
	"pixery/internal/domain"
	"pixery/internal/ports"
)

// GenerateKeyMap defines key bindings for the generate view
type GenerateKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
	Tab    key.Binding
}

var GenerateKeys = GenerateKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "generate"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
}

// Field order in the generate form.
const (
	fieldPrompt = iota
	fieldModel
	fieldTags
	fieldNegative
	fieldRefs
)

// GenerateModel is the form that submits a new generation.
type GenerateModel struct {
	ViewState
	gallery    ports.Gallery
	jobs       ports.JobService
	archive    ports.Archive
	generators map[domain.ProviderName]ports.Generator

	form        *InputForm
	suggestions []string
}

// NewGenerateModel creates a new generate view model
func NewGenerateModel(gallery ports.Gallery, jobs ports.JobService, archive ports.Archive, generators map[domain.ProviderName]ports.Generator) *GenerateModel {
	form := NewInputForm(
		NewInputField("Prompt", "a neon city at night", 500),
		NewInputField("Model", "dall-e-3", 40),
		NewInputField("Tags", "tag, another-tag", 200),
		NewInputField("Negative prompt", "optional, self-hosted models only", 500),
		NewInputField("Reference images", "optional, comma-separated paths", 500),
	)
	return &GenerateModel{
		gallery:    gallery,
		jobs:       jobs,
		archive:    archive,
		generators: generators,
		form:       form,
	}
}

// Reset clears the form for a fresh submission.
func (m *GenerateModel) Reset() {
	m.form.Reset()
	m.suggestions = nil
	m.ClearMessage()
}

// SetReferences pre-fills the reference images field with archived paths,
// resolved to absolute so the provider can read them.
func (m *GenerateModel) SetReferences(paths []string) {
	abs := make([]string, len(paths))
	for i, p := range paths {
		abs[i] = m.archive.AbsPath(p)
	}
	m.form.SetValue(fieldRefs, strings.Join(abs, ", "))
}

// Init initializes the generate view
func (m *GenerateModel) Init() tea.Cmd {
	return m.form.Init()
}

// GenerateStartedMsg tells the app a generation was submitted and the
// gallery should be shown while it runs.
type GenerateStartedMsg struct{}

// GenerateDoneMsg carries the outcome of a background generation.
type GenerateDoneMsg struct {
	RecordID int64
	Err      error
}

type suggestionsMsg struct {
	tags []string
}

// Update handles messages for the generate view
func (m *GenerateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case suggestionsMsg:
		m.suggestions = msg.tags
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, GenerateKeys.Cancel):
			return m, func() tea.Msg { return SwitchToGalleryMsg{} }

		case key.Matches(msg, GenerateKeys.Submit):
			return m, m.submit()
		}
	}

	handled, cmd := m.form.Update(msg)
	if handled {
		m.suggestions = nil
		return m, cmd
	}

	// Refresh tag suggestions while the tags field is being typed in.
	if _, ok := msg.(tea.KeyMsg); ok && m.form.FocusedField == fieldTags {
		return m, tea.Batch(cmd, m.suggest(lastTagFragment(m.form.Value(fieldTags))))
	}
	return m, cmd
}

func (m *GenerateModel) suggest(fragment string) tea.Cmd {
	if fragment == "" {
		m.suggestions = nil
		return nil
	}
	return func() tea.Msg {
		cmd := commands.NewSuggestTagsCommand(m.gallery, fragment, 5)
		suggestions, err := cmd.Execute(context.Background())
		if err != nil {
			return suggestionsMsg{nil}
		}
		tags := make([]string, 0, len(suggestions))
		for _, s := range suggestions {
			tags = append(tags, s.Name)
		}
		return suggestionsMsg{tags}
	}
}

func (m *GenerateModel) submit() tea.Cmd {
	params := domain.GenerateParams{
		Prompt:         m.form.Value(fieldPrompt),
		Model:          m.form.Value(fieldModel),
		Tags:           splitCSV(m.form.Value(fieldTags)),
		NegativePrompt: m.form.Value(fieldNegative),
		ReferencePaths: splitCSV(m.form.Value(fieldRefs)),
	}

	cmd := commands.NewGenerateCommand(m.gallery, m.jobs, m.archive, m.generators, domain.JobSourceGUI, params)
	if err := cmd.Validate(); err != nil {
		m.SetMessage(err.Error(), true)
		return nil
	}

	// The provider call runs in the background; the gallery comes back up
	// immediately and the job tracker shows progress.
	run := func() tea.Msg {
		result, err := cmd.Execute(context.Background())
		if err != nil {
			return GenerateDoneMsg{Err: err}
		}
		return GenerateDoneMsg{RecordID: result.RecordID}
	}
	return tea.Batch(
		func() tea.Msg { return GenerateStartedMsg{} },
		run,
	)
}

// View renders the generate view
func (m *GenerateModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Generate"))
	b.WriteString("\n\n")

	for i := range m.form.Fields {
		b.WriteString(m.form.RenderField(i))
		b.WriteString("\n")
		if i == fieldTags && len(m.suggestions) > 0 {
			b.WriteString(styles.MutedText.Render("  did you mean: "))
			b.WriteString(styles.TagText.Render(strings.Join(m.suggestions, ", ")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.Subtitle.Render(modelHint()))
	b.WriteString("\n\n")

	if m.Message != "" {
		if m.MessageErr {
			b.WriteString(styles.ErrorMsg.Render(m.Message))
		} else {
			b.WriteString(styles.Success.Render(m.Message))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(m.form.RenderHelp("generate"))

	return styles.App.Render(b.String())
}

func modelHint() string {
	models := domain.Models()
	ids := make([]string, 0, len(models))
	for _, model := range models {
		ids = append(ids, model.ID)
	}
	return "Models: " + strings.Join(ids, ", ")
}

// lastTagFragment returns the partial tag currently being typed.
func lastTagFragment(value string) string {
	parts := strings.Split(value, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}
