package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"pixery/internal/adapters/editor"
	"pixery/internal/adapters/tui/views"
	"pixery/internal/application/commands"
	"pixery/internal/browse"
	"pixery/internal/domain"
	"pixery/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewGallery ViewState = iota
	ViewDetail
	ViewCompare
	ViewGenerate
	ViewHelp
)

// Deps bundles everything the TUI needs.
type Deps struct {
	Gallery    ports.Gallery
	Jobs       ports.JobService
	Archive    ports.Archive
	Generators map[domain.ProviderName]ports.Generator
	Viewer     *editor.Opener

	Cache    *browse.Cache
	Sel      *browse.Selection
	Tracker  *browse.JobTracker
	Notifier ports.Notifier

	SearchLimit int64
}

// App is the main TUI application model
type App struct {
	deps   Deps
	viewer *editor.Opener

	state    ViewState
	gallery  *views.GalleryModel
	detail   *views.DetailModel
	compare  *views.CompareModel
	generate *views.GenerateModel
	help     *views.HelpModel

	// events carries change notifications from the cache, selection,
	// tracker, and filesystem watcher into the bubbletea loop.
	events chan tea.Msg

	width  int
	height int
}

// NewApp creates a new TUI application and subscribes it to the shared
// browse state.
func NewApp(deps Deps) *App {
	a := &App{
		deps:     deps,
		viewer:   deps.Viewer,
		state:    ViewGallery,
		gallery:  views.NewGalleryModel(deps.Gallery, deps.Cache, deps.Sel, deps.Tracker, deps.SearchLimit),
		detail:   views.NewDetailModel(deps.Gallery, deps.Archive),
		compare:  views.NewCompareModel(deps.Gallery),
		generate: views.NewGenerateModel(deps.Gallery, deps.Jobs, deps.Archive, deps.Generators),
		help:     views.NewHelpModel(),
		events:   make(chan tea.Msg, 16),
	}

	notify := func() {
		select {
		case a.events <- views.StateChangedMsg{}:
		default:
		}
	}
	deps.Cache.Subscribe(notify)
	deps.Sel.Subscribe(notify)
	deps.Tracker.Subscribe(notify)
	if deps.Notifier != nil {
		deps.Notifier.Subscribe(func() {
			select {
			case a.events <- externalChangeMsg{}:
			default:
			}
		})
	}

	return a
}

// externalChangeMsg is emitted when another process touched the archive.
type externalChangeMsg struct{}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.gallery.Init(), a.waitForEvent())
}

// waitForEvent re-arms the bridge between subscription callbacks and the
// bubbletea message loop.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-a.events
	}
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.gallery.Update(msg)
		a.detail.SetSize(msg.Width, msg.Height)
		a.compare.SetSize(msg.Width, msg.Height)
		a.generate.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case views.StateChangedMsg:
		_, cmd := a.gallery.Update(msg)
		return a, tea.Batch(cmd, a.waitForEvent())

	case externalChangeMsg:
		a.deps.Tracker.PollNow()
		return a, tea.Batch(a.refreshCache(), a.waitForEvent())

	// View switching messages
	case views.SwitchToGalleryMsg:
		a.state = ViewGallery
		return a, nil

	case views.SwitchToDetailMsg:
		a.state = ViewDetail
		a.detail.SetRecord(msg.ID)
		return a, a.detail.Init()

	case views.SwitchToCompareMsg:
		left, right, ok := a.deps.Sel.CompareIDs()
		if !ok {
			return a, nil
		}
		a.state = ViewCompare
		a.compare.SetPair(left, right)
		return a, a.compare.Init()

	case views.SwitchToGenerateMsg:
		a.state = ViewGenerate
		a.generate.Reset()
		if len(msg.ReferencePaths) > 0 {
			a.generate.SetReferences(msg.ReferencePaths)
		}
		return a, a.generate.Init()

	case views.RegenerateMarkedMsg:
		return a, a.regenerateMarked()

	case views.BatchDoneMsg:
		a.deps.Tracker.PollNow()
		_, cmd := a.gallery.Update(msg)
		return a, cmd

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	// Generation lifecycle
	case views.GenerateStartedMsg:
		a.state = ViewGallery
		a.deps.Tracker.PollNow()
		return a, nil

	case views.GenerateDoneMsg:
		a.deps.Tracker.PollNow()
		_, cmd := a.gallery.Update(msg)
		return a, tea.Batch(cmd, a.refreshCache())

	case views.OpenViewerMsg:
		return a, a.openViewer(msg.Path)
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewGallery:
		_, cmd = a.gallery.Update(msg)
	case ViewDetail:
		_, cmd = a.detail.Update(msg)
	case ViewCompare:
		_, cmd = a.compare.Update(msg)
	case ViewGenerate:
		_, cmd = a.generate.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

// regenerateMarked re-submits one generation per marked record, each
// carrying its source's prompt and settings and linked back via parent id.
// Runs in the background like a form submission; the job strip shows
// progress as the polls land.
func (a *App) regenerateMarked() tea.Cmd {
	return func() tea.Msg {
		err := a.deps.Sel.RegenerateMarked(context.Background(), func(ctx context.Context, rec *domain.Record) error {
			params := domain.GenerateParams{
				Prompt:         rec.Prompt,
				Model:          rec.Model,
				Tags:           rec.Tags,
				NegativePrompt: rec.NegativePrompt,
				Width:          rec.Width,
				Height:         rec.Height,
				ParentID:       rec.ID,
			}
			gen := commands.NewGenerateCommand(a.deps.Gallery, a.deps.Jobs, a.deps.Archive, a.deps.Generators, domain.JobSourceGUI, params)
			_, err := gen.Execute(ctx)
			return err
		})
		if err != nil {
			return views.BatchDoneMsg{Err: err}
		}
		return views.BatchDoneMsg{Message: "Regenerated marked records"}
	}
}

func (a *App) refreshCache() tea.Cmd {
	return func() tea.Msg {
		a.deps.Cache.Refresh(context.Background())
		return views.StateChangedMsg{}
	}
}

type viewerFinishedMsg struct{ err error }

func (a *App) openViewer(path string) tea.Cmd {
	if a.viewer == nil {
		return nil
	}

	cmd, err := a.viewer.Command(path)
	if err != nil {
		return func() tea.Msg {
			return viewerFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return viewerFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewDetail:
		return a.detail.View()
	case ViewCompare:
		return a.compare.View()
	case ViewGenerate:
		return a.generate.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.gallery.View()
	}
}
