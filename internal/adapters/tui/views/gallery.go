package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pixery/internal/adapters/tui/styles"
	"pixery/internal/browse"
	"pixery/internal/domain"
	"pixery/internal/ports"
)

// GalleryKeyMap defines key bindings for the gallery view
type GalleryKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Open     key.Binding
	Mark     key.Binding
	Range    key.Binding
	Clear    key.Binding
	Star     key.Binding
	Tags     key.Binding
	Title    key.Binding
	Trash    key.Binding
	Restore  key.Binding
	Collect  key.Binding
	Compare  key.Binding
	UseRefs  key.Binding
	Regen    key.Binding
	Search   key.Binding
	Filter   key.Binding
	Starred  key.Binding
	TrashBin key.Binding
	Generate key.Binding
	Dismiss  key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var GalleryKeys = GalleryKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "bottom"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Mark: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "mark"),
	),
	Range: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "mark range"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear marks"),
	),
	Star: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "star"),
	),
	Tags: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "tag"),
	),
	Title: key.NewBinding(
		key.WithKeys("T"),
		key.WithHelp("T", "title"),
	),
	Trash: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "trash"),
	),
	Restore: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "restore"),
	),
	Collect: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "collect"),
	),
	Compare: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "compare"),
	),
	UseRefs: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "use as references"),
	),
	Regen: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "regenerate"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "filter tags"),
	),
	Starred: key.NewBinding(
		key.WithKeys("*"),
		key.WithHelp("*", "starred only"),
	),
	TrashBin: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "trash view"),
	),
	Generate: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "generate"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("J"),
		key.WithHelp("J", "dismiss failures"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// inputPurpose says what the inline text input collects.
type inputPurpose int

const (
	inputNone inputPurpose = iota
	inputSearch
	inputTagFilter
	inputAddTags
	inputTitle
	inputCollect
)

// loadMoreThreshold is how close to the window end the cursor may get
// before the next page is requested.
const loadMoreThreshold = 5

// GalleryModel is the main list view over the record window.
type GalleryModel struct {
	ViewState
	gallery ports.Gallery
	cache   *browse.Cache
	sel     *browse.Selection
	tracker *browse.JobTracker

	cursor      *Cursor
	filter      domain.Filter
	searchLimit int64

	input        textinput.Model
	inputFor     inputPurpose
	confirmTrash bool
	trashCount   int
	confirmRegen bool
	regenCount   int
}

// NewGalleryModel creates the gallery view bound to the shared browse state.
func NewGalleryModel(gallery ports.Gallery, cache *browse.Cache, sel *browse.Selection, tracker *browse.JobTracker, searchLimit int64) *GalleryModel {
	input := textinput.New()
	input.CharLimit = 200

	return &GalleryModel{
		gallery:     gallery,
		cache:       cache,
		sel:         sel,
		tracker:     tracker,
		cursor:      NewCursor(20),
		searchLimit: searchLimit,
		input:       input,
	}
}

// Init loads the first page.
func (m *GalleryModel) Init() tea.Cmd {
	return m.reset(m.filter)
}

// StateChangedMsg tells the view that cache, selection, or tracker state
// moved underneath it.
type StateChangedMsg struct{}

// Update handles messages for the gallery
func (m *GalleryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		m.cursor.SetViewRows(max(msg.Height-10, 5))
		return m, nil

	case StateChangedMsg:
		m.syncCursor()
		return m, nil

	case GenerateDoneMsg:
		if msg.Err != nil {
			m.SetMessage(msg.Err.Error(), true)
		} else {
			m.SetMessage(fmt.Sprintf("Generated #%d", msg.RecordID), false)
		}
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case successMsg:
		m.SetMessage(msg.message, false)
		return m, nil

	case BatchDoneMsg:
		if msg.Err != nil {
			m.SetMessage(msg.Err.Error(), true)
		} else {
			m.SetMessage(msg.Message, false)
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirmTrash || m.confirmRegen {
			return m.updateConfirm(msg)
		}
		if m.inputFor != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m *GalleryModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.ClearMessage()

	switch {
	case key.Matches(msg, GalleryKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, GalleryKeys.Up):
		if m.cursor.Up() {
			m.focusCursor()
		}
		return m, nil

	case key.Matches(msg, GalleryKeys.Down):
		m.cursor.Down()
		m.focusCursor()
		return m, m.maybeLoadMore()

	case key.Matches(msg, GalleryKeys.PageUp):
		m.cursor.PageUp()
		m.focusCursor()
		return m, nil

	case key.Matches(msg, GalleryKeys.PageDown):
		m.cursor.PageDown()
		m.focusCursor()
		return m, m.maybeLoadMore()

	case key.Matches(msg, GalleryKeys.Home):
		m.cursor.Home()
		m.focusCursor()
		return m, nil

	case key.Matches(msg, GalleryKeys.End):
		m.cursor.End()
		m.focusCursor()
		return m, m.maybeLoadMore()

	case key.Matches(msg, GalleryKeys.Open):
		if rec := m.focused(); rec != nil {
			if m.sel.Click(rec.ID, browse.ClickMods{}) {
				id := rec.ID
				return m, func() tea.Msg { return SwitchToDetailMsg{ID: id} }
			}
		}
		return m, nil

	case key.Matches(msg, GalleryKeys.Mark):
		if rec := m.focused(); rec != nil {
			m.sel.Click(rec.ID, browse.ClickMods{Toggle: true})
		}
		return m, nil

	case key.Matches(msg, GalleryKeys.Range):
		if rec := m.focused(); rec != nil {
			m.sel.Click(rec.ID, browse.ClickMods{Range: true})
		}
		return m, nil

	case key.Matches(msg, GalleryKeys.Clear):
		m.sel.Clear()
		return m, nil

	case key.Matches(msg, GalleryKeys.Star):
		if rec := m.focused(); rec != nil {
			return m, m.toggleStar(rec.ID)
		}
		return m, nil

	case key.Matches(msg, GalleryKeys.Tags):
		if m.sel.MarkedCount() == 0 && m.focused() == nil {
			return m, nil
		}
		return m, m.openInput(inputAddTags, "tag, another-tag", "")

	case key.Matches(msg, GalleryKeys.Title):
		if rec := m.focused(); rec != nil {
			return m, m.openInput(inputTitle, "title", rec.Title)
		}
		return m, nil

	case key.Matches(msg, GalleryKeys.Trash):
		if m.filter.Trashed {
			return m, nil
		}
		count := m.sel.MarkedCount()
		if count == 0 {
			if m.focused() == nil {
				return m, nil
			}
			count = 1
		}
		m.confirmTrash = true
		m.trashCount = count
		return m, nil

	case key.Matches(msg, GalleryKeys.Restore):
		if m.filter.Trashed {
			if rec := m.focused(); rec != nil {
				return m, m.restore(rec.ID)
			}
		}
		return m, nil

	case key.Matches(msg, GalleryKeys.Collect):
		if m.sel.MarkedCount() == 0 && m.focused() == nil {
			return m, nil
		}
		return m, m.openInput(inputCollect, "collection name", "")

	case key.Matches(msg, GalleryKeys.Compare):
		if _, _, ok := m.sel.CompareIDs(); !ok {
			m.SetMessage(fmt.Sprintf("compare needs exactly 2 marked records, have %d", m.sel.MarkedCount()), true)
			return m, nil
		}
		return m, func() tea.Msg { return SwitchToCompareMsg{} }

	case key.Matches(msg, GalleryKeys.UseRefs):
		if m.sel.MarkedCount() == 0 {
			m.SetMessage("mark records to use as references (space)", true)
			return m, nil
		}
		return m, m.useAsReferences()

	case key.Matches(msg, GalleryKeys.Regen):
		count := m.sel.MarkedCount()
		if count == 0 {
			m.SetMessage("mark records to regenerate (space)", true)
			return m, nil
		}
		m.confirmRegen = true
		m.regenCount = count
		return m, nil

	case key.Matches(msg, GalleryKeys.Search):
		return m, m.openInput(inputSearch, "search prompts", "")

	case key.Matches(msg, GalleryKeys.Filter):
		return m, m.openInput(inputTagFilter, "tag, -excluded-tag", strings.Join(m.filter.Tags, ", "))

	case key.Matches(msg, GalleryKeys.Starred):
		f := m.filter
		f.StarredOnly = !f.StarredOnly
		return m, m.reset(f)

	case key.Matches(msg, GalleryKeys.TrashBin):
		f := m.filter
		f.Trashed = !f.Trashed
		return m, m.reset(f)

	case key.Matches(msg, GalleryKeys.Generate):
		return m, func() tea.Msg { return SwitchToGenerateMsg{} }

	case key.Matches(msg, GalleryKeys.Dismiss):
		for _, j := range m.tracker.FailedJobs() {
			m.tracker.Dismiss(j.ID)
		}
		return m, nil

	case key.Matches(msg, GalleryKeys.Refresh):
		return m, m.refresh()

	case key.Matches(msg, GalleryKeys.Help):
		return m, func() tea.Msg { return SwitchToHelpMsg{} }
	}

	return m, nil
}

func (m *GalleryModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	handled, cmd := DefaultConfirmKeys.Handle(msg,
		func() tea.Cmd {
			if m.confirmTrash {
				m.confirmTrash = false
				return m.trash()
			}
			m.confirmRegen = false
			return func() tea.Msg { return RegenerateMarkedMsg{} }
		},
		func() tea.Cmd {
			m.confirmTrash = false
			m.confirmRegen = false
			return nil
		},
	)
	if handled {
		return m, cmd
	}
	return m, nil
}

func (m *GalleryModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputFor = inputNone
		m.input.Blur()
		return m, nil
	case "enter":
		purpose := m.inputFor
		value := strings.TrimSpace(m.input.Value())
		m.inputFor = inputNone
		m.input.Blur()
		return m, m.submitInput(purpose, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *GalleryModel) openInput(purpose inputPurpose, placeholder, value string) tea.Cmd {
	m.inputFor = purpose
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *GalleryModel) submitInput(purpose inputPurpose, value string) tea.Cmd {
	switch purpose {
	case inputSearch:
		if value == "" {
			return m.reset(domain.Filter{Trashed: m.filter.Trashed})
		}
		m.cursor.Reset()
		m.sel.Clear()
		return func() tea.Msg {
			m.cache.Search(context.Background(), value, m.searchLimit)
			return StateChangedMsg{}
		}

	case inputTagFilter:
		f := m.filter
		f.Tags, f.ExcludeTags = parseTagFilter(value)
		return m.reset(f)

	case inputAddTags:
		tags := splitCSV(value)
		if len(tags) == 0 {
			return nil
		}
		return m.tagTargets(tags)

	case inputTitle:
		if rec := m.focused(); rec != nil {
			return m.setTitle(rec.ID, value)
		}

	case inputCollect:
		if value == "" {
			return nil
		}
		return m.collectTargets(value)
	}
	return nil
}

// --- async operations ---

func (m *GalleryModel) reset(filter domain.Filter) tea.Cmd {
	m.filter = filter
	m.cursor.Reset()
	m.sel.Clear()
	return func() tea.Msg {
		m.cache.Reset(context.Background(), filter)
		return StateChangedMsg{}
	}
}

func (m *GalleryModel) refresh() tea.Cmd {
	return func() tea.Msg {
		m.cache.Refresh(context.Background())
		return StateChangedMsg{}
	}
}

func (m *GalleryModel) maybeLoadMore() tea.Cmd {
	if !m.cursor.NearEnd(loadMoreThreshold) || !m.cache.HasMore() || m.cache.Loading() {
		return nil
	}
	return func() tea.Msg {
		m.cache.LoadMore(context.Background())
		return StateChangedMsg{}
	}
}

func (m *GalleryModel) toggleStar(id int64) tea.Cmd {
	return func() tea.Msg {
		starred, err := m.gallery.ToggleStar(context.Background(), id)
		if err != nil {
			return errMsg{err}
		}
		m.cache.Refresh(context.Background())
		if starred {
			return successMsg{fmt.Sprintf("Starred #%d", id)}
		}
		return successMsg{fmt.Sprintf("Unstarred #%d", id)}
	}
}

func (m *GalleryModel) setTitle(id int64, title string) tea.Cmd {
	return func() tea.Msg {
		if err := m.gallery.SetTitle(context.Background(), id, title); err != nil {
			return errMsg{err}
		}
		m.cache.Refresh(context.Background())
		return successMsg{fmt.Sprintf("Updated title of #%d", id)}
	}
}

func (m *GalleryModel) tagTargets(tags []string) tea.Cmd {
	if m.sel.MarkedCount() > 0 {
		return func() tea.Msg {
			if err := m.sel.TagMarked(context.Background(), tags); err != nil {
				return errMsg{err}
			}
			return successMsg{"Tagged marked records"}
		}
	}
	rec := m.focused()
	if rec == nil {
		return nil
	}
	id := rec.ID
	return func() tea.Msg {
		if err := m.gallery.AddTags(context.Background(), id, tags); err != nil {
			return errMsg{err}
		}
		m.cache.Refresh(context.Background())
		return successMsg{fmt.Sprintf("Tagged #%d", id)}
	}
}

func (m *GalleryModel) collectTargets(name string) tea.Cmd {
	if m.sel.MarkedCount() > 0 {
		return func() tea.Msg {
			if err := m.sel.CollectMarked(context.Background(), name); err != nil {
				return errMsg{err}
			}
			return successMsg{fmt.Sprintf("Added marked records to %q", name)}
		}
	}
	rec := m.focused()
	if rec == nil {
		return nil
	}
	id := rec.ID
	return func() tea.Msg {
		if err := m.gallery.AddToCollection(context.Background(), id, name); err != nil {
			return errMsg{err}
		}
		m.cache.Refresh(context.Background())
		return successMsg{fmt.Sprintf("Added #%d to %q", id, name)}
	}
}

func (m *GalleryModel) useAsReferences() tea.Cmd {
	return func() tea.Msg {
		paths, err := m.sel.ReferenceMarked(context.Background())
		if err != nil {
			return errMsg{err}
		}
		if len(paths) == 0 {
			return errMsg{fmt.Errorf("marked records have no archived images")}
		}
		return SwitchToGenerateMsg{ReferencePaths: paths}
	}
}

func (m *GalleryModel) trash() tea.Cmd {
	if m.sel.MarkedCount() > 0 {
		return func() tea.Msg {
			if err := m.sel.TrashMarked(context.Background()); err != nil {
				return errMsg{err}
			}
			return successMsg{"Trashed marked records"}
		}
	}
	rec := m.focused()
	if rec == nil {
		return nil
	}
	id := rec.ID
	return func() tea.Msg {
		if err := m.gallery.Trash(context.Background(), id); err != nil {
			return errMsg{err}
		}
		m.cache.Refresh(context.Background())
		return successMsg{fmt.Sprintf("Trashed #%d", id)}
	}
}

func (m *GalleryModel) restore(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.gallery.Restore(context.Background(), id); err != nil {
			return errMsg{err}
		}
		m.cache.Refresh(context.Background())
		return successMsg{fmt.Sprintf("Restored #%d", id)}
	}
}

// --- cursor and focus ---

func (m *GalleryModel) focused() *domain.Record {
	records := m.cache.Records()
	pos := m.cursor.Pos()
	if pos < 0 || pos >= len(records) {
		return nil
	}
	return records[pos]
}

func (m *GalleryModel) focusCursor() {
	if rec := m.focused(); rec != nil {
		m.sel.SetFocus(rec.ID)
	}
}

// syncCursor reconciles the cursor with a changed window: keep pointing at
// the focused record if it is still present, otherwise clamp.
func (m *GalleryModel) syncCursor() {
	records := m.cache.Records()
	m.cursor.SetTotal(len(records))
	if selected := m.sel.Selected(); selected != 0 {
		for i, rec := range records {
			if rec.ID == selected {
				m.cursor.SetPos(i)
				return
			}
		}
	}
	if err := m.cache.Err(); err != "" {
		m.SetMessage(err, true)
	}
}

// View renders the gallery
func (m *GalleryModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Pixery"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(m.filterSummary()))
	b.WriteString("\n\n")

	if strip := RenderJobsStrip(m.tracker); strip != "" {
		b.WriteString(strip)
		b.WriteString("\n\n")
	}

	records := m.cache.Records()
	if len(records) == 0 {
		if m.cache.Loading() {
			b.WriteString(styles.MutedText.Render("Loading..."))
		} else {
			b.WriteString(styles.MutedText.Render("Nothing here."))
		}
		b.WriteString("\n")
	} else {
		start, end := m.cursor.Visible()
		for i := start; i < end; i++ {
			b.WriteString(m.renderRow(records[i], i == m.cursor.Pos()))
			b.WriteString("\n")
		}
		if m.cache.HasMore() {
			b.WriteString(styles.MutedText.Render("  ..."))
			b.WriteString("\n")
		}
	}

	if m.confirmTrash {
		b.WriteString("\n")
		noun := "record"
		if m.trashCount > 1 {
			noun = "records"
		}
		b.WriteString(RenderConfirmPrompt(fmt.Sprintf("Trash %d %s?", m.trashCount, noun)))
		b.WriteString("\n")
	} else if m.confirmRegen {
		b.WriteString("\n")
		noun := "record"
		if m.regenCount > 1 {
			noun = "records"
		}
		b.WriteString(RenderConfirmPrompt(fmt.Sprintf("Regenerate %d %s?", m.regenCount, noun)))
		b.WriteString("\n")
	} else if m.inputFor != inputNone {
		b.WriteString("\n")
		b.WriteString(styles.InputLabel.Render(m.inputLabel()))
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(m.input.View()))
		b.WriteString("\n")
	}

	if m.Message != "" {
		b.WriteString("\n")
		if m.MessageErr {
			b.WriteString(styles.ErrorMsg.Render(m.Message))
		} else {
			b.WriteString(styles.Success.Render(m.Message))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelpLine())

	return styles.App.Render(b.String())
}

func (m *GalleryModel) renderRow(rec *domain.Record, focused bool) string {
	star := " "
	if rec.Starred {
		star = styles.StarGlyph.String()
	}

	mark := " "
	if m.sel.IsMarked(rec.ID) {
		mark = styles.RowMarked.Render("●")
	}

	label := rec.Title
	if label == "" {
		label = rec.Prompt
	}
	if len(label) > 60 {
		label = label[:59] + "…"
	}

	text := fmt.Sprintf("#%-5d %s  %-24s %s", rec.ID, rec.Date, rec.Model, label)

	var styled string
	switch {
	case focused:
		styled = styles.RowFocused.Render(text)
	case rec.Trashed():
		styled = styles.RowTrashed.Render(text)
	default:
		styled = styles.Row.Render(text)
	}

	line := fmt.Sprintf("%s %s %s", mark, star, styled)
	if len(rec.Tags) > 0 && !focused {
		line += "  " + styles.TagText.Render(strings.Join(rec.Tags, ","))
	}
	return line
}

func (m *GalleryModel) filterSummary() string {
	f := m.cache.Filter()
	var parts []string
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", f.Search))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tags "+strings.Join(f.Tags, ","))
	}
	if len(f.ExcludeTags) > 0 {
		parts = append(parts, "-"+strings.Join(f.ExcludeTags, ",-"))
	}
	if f.StarredOnly {
		parts = append(parts, "starred")
	}
	if f.Trashed {
		parts = append(parts, "trash")
	}
	if f.Collection != "" {
		parts = append(parts, "collection "+f.Collection)
	}
	if len(parts) == 0 {
		return "All generations"
	}
	summary := strings.Join(parts, ", ")
	if marked := m.sel.MarkedCount(); marked > 0 {
		summary += fmt.Sprintf("  [%d marked]", marked)
	}
	return summary
}

func (m *GalleryModel) inputLabel() string {
	switch m.inputFor {
	case inputSearch:
		return "Search:"
	case inputTagFilter:
		return "Filter tags (prefix - to exclude):"
	case inputAddTags:
		return "Add tags:"
	case inputTitle:
		return "Title:"
	case inputCollect:
		return "Collection:"
	}
	return ""
}

func (m *GalleryModel) renderHelpLine() string {
	keys := []struct {
		key  string
		desc string
	}{
		{"j/k", "navigate"},
		{"space", "mark"},
		{"v", "range"},
		{"s", "star"},
		{"t", "tag"},
		{"d", "trash"},
		{"n", "generate"},
		{"/", "search"},
		{"?", "help"},
		{"q", "quit"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s",
			styles.HelpKey.Render(k.key),
			styles.HelpDesc.Render(k.desc),
		))
	}

	return strings.Join(parts, styles.HelpSeparator.String())
}

// parseTagFilter splits a comma list into include and exclude tags; a
// leading dash excludes.
func parseTagFilter(raw string) (include, exclude []string) {
	for _, tag := range splitCSV(raw) {
		if cut, ok := strings.CutPrefix(tag, "-"); ok {
			if cut != "" {
				exclude = append(exclude, cut)
			}
			continue
		}
		include = append(include, tag)
	}
	return include, exclude
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
