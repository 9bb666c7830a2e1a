package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"pixery/internal/adapters/archive"
	"pixery/internal/adapters/editor"
	"pixery/internal/adapters/providers"
	"pixery/internal/adapters/sqlite"
	"pixery/internal/adapters/tui"
	"pixery/internal/adapters/watcher"
	"pixery/internal/browse"
	"pixery/internal/config"
	"pixery/internal/ports"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Initialize adapters
	store, err := sqlite.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	arch, err := archive.New(cfg.Archive.Root)
	if err != nil {
		return err
	}

	generators := providers.New(providers.Config{
		OpenAIKey:     cfg.Providers.OpenAIKey,
		FalKey:        cfg.Providers.FalKey,
		GeminiKey:     cfg.Providers.GeminiKey,
		SelfHostedURL: cfg.Providers.SelfHostedURL,
	})

	ctx := context.Background()

	// Jobs left running by a crashed process would poll forever.
	if _, err := store.CleanupStalled(ctx); err != nil {
		log.Warn("stalled job cleanup failed", "err", err)
	}

	// Shared browse state
	cache := browse.NewCache(store, cfg.Gallery.PageSize)
	sel := browse.NewSelection(cache, store)
	tracker := browse.NewJobTracker(store, browse.TrackerConfig{
		FastInterval:   cfg.FastPoll(),
		SlowInterval:   cfg.SlowPoll(),
		FailedInterval: cfg.FailedPoll(),
	})
	tracker.Start(ctx)
	defer tracker.Stop()

	var notifier ports.Notifier
	if fsWatcher, err := watcher.New(cfg.GenerationsDir(), log); err != nil {
		log.Warn("archive watcher unavailable", "err", err)
	} else {
		defer fsWatcher.Close()
		notifier = fsWatcher
	}

	app := tui.NewApp(tui.Deps{
		Gallery:     store,
		Jobs:        store,
		Archive:     arch,
		Generators:  generators,
		Viewer:      editor.NewOpener(),
		Cache:       cache,
		Sel:         sel,
		Tracker:     tracker,
		Notifier:    notifier,
		SearchLimit: cfg.Gallery.SearchLimit,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
