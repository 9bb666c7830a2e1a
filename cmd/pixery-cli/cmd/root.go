package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pixery/internal/adapters/archive"
	"pixery/internal/adapters/providers"
	"pixery/internal/adapters/sqlite"
	"pixery/internal/config"
	"pixery/internal/domain"
	"pixery/internal/ports"
)

var (
	cfg   config.Config
	store *sqlite.Store
	arch  *archive.Archive
)

var rootCmd = &cobra.Command{
	Use:   "pixery-cli",
	Short: "CLI for the image generation gallery",
	Long: `pixery-cli manages a local archive of AI-generated images.

It provides commands to generate images, browse and search the gallery,
organize records with stars, tags, and collections, and track spend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		store, err = sqlite.Open(cfg.DatabasePath())
		if err != nil {
			return err
		}
		arch, err = archive.New(cfg.Archive.Root)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetStore returns the initialized record store
func GetStore() *sqlite.Store {
	return store
}

// GetArchive returns the initialized image archive
func GetArchive() *archive.Archive {
	return arch
}

// GetGenerators builds the provider registry from config.
func GetGenerators() map[domain.ProviderName]ports.Generator {
	return providers.New(providers.Config{
		OpenAIKey:     cfg.Providers.OpenAIKey,
		FalKey:        cfg.Providers.FalKey,
		GeminiKey:     cfg.Providers.GeminiKey,
		SelfHostedURL: cfg.Providers.SelfHostedURL,
	})
}
