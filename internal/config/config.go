// Package config loads application configuration from file and
// environment. Env var overrides use prefix PIXERY_; provider API keys also
// fall back to their conventional env vars.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Archive   ArchiveConfig
	Gallery   GalleryConfig
	Jobs      JobsConfig
	Providers ProvidersConfig
}

// ArchiveConfig holds storage paths.
type ArchiveConfig struct {
	// Root directory holding generations/, references/, and the database.
	Root string `mapstructure:"root"`
	// DatabasePath overrides the default <root>/index.sqlite location.
	DatabasePath string `mapstructure:"database_path"`
}

// GalleryConfig holds browsing settings.
type GalleryConfig struct {
	PageSize    int64 `mapstructure:"page_size"`
	SearchLimit int64 `mapstructure:"search_limit"`
}

// JobsConfig holds job polling cadence.
type JobsConfig struct {
	FastPollSeconds   int `mapstructure:"fast_poll_seconds"`
	SlowPollSeconds   int `mapstructure:"slow_poll_seconds"`
	FailedPollSeconds int `mapstructure:"failed_poll_seconds"`
}

// ProvidersConfig holds generation backend credentials and endpoints.
type ProvidersConfig struct {
	OpenAIKey     string `mapstructure:"openai_key"`
	FalKey        string `mapstructure:"fal_key"`
	GeminiKey     string `mapstructure:"gemini_key"`
	SelfHostedURL string `mapstructure:"selfhosted_url"`
}

// DatabasePath returns the effective database location.
func (c Config) DatabasePath() string {
	if c.Archive.DatabasePath != "" {
		return c.Archive.DatabasePath
	}
	return filepath.Join(c.Archive.Root, "index.sqlite")
}

// GenerationsDir returns the directory the watcher observes.
func (c Config) GenerationsDir() string {
	return filepath.Join(c.Archive.Root, "generations")
}

// FastPoll returns the active-jobs poll interval while jobs are running.
func (c Config) FastPoll() time.Duration {
	return time.Duration(c.Jobs.FastPollSeconds) * time.Second
}

// SlowPoll returns the active-jobs poll interval while idle.
func (c Config) SlowPoll() time.Duration {
	return time.Duration(c.Jobs.SlowPollSeconds) * time.Second
}

// FailedPoll returns the failed-jobs poll interval.
func (c Config) FailedPoll() time.Duration {
	return time.Duration(c.Jobs.FailedPollSeconds) * time.Second
}

// Load reads configuration from file and env. Env var overrides use prefix
// PIXERY_, e.g. PIXERY_ARCHIVE_ROOT.
func Load() (Config, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()
	v.SetDefault("archive.root", filepath.Join(home, "media", "image-gen"))
	v.SetDefault("archive.database_path", "")
	v.SetDefault("gallery.page_size", 50)
	v.SetDefault("gallery.search_limit", 200)
	v.SetDefault("jobs.fast_poll_seconds", 2)
	v.SetDefault("jobs.slow_poll_seconds", 10)
	v.SetDefault("jobs.failed_poll_seconds", 30)
	v.SetDefault("providers.openai_key", "")
	v.SetDefault("providers.fal_key", "")
	v.SetDefault("providers.gemini_key", "")
	v.SetDefault("providers.selfhosted_url", "")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("PIXERY_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "pixery"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PIXERY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Conventional provider env vars win over empty config values.
	if c.Providers.OpenAIKey == "" {
		c.Providers.OpenAIKey = firstEnv("OPENAI_API_SECRET_KEY", "OPENAI_API_KEY")
	}
	if c.Providers.FalKey == "" {
		c.Providers.FalKey = os.Getenv("FAL_KEY")
	}
	if c.Providers.GeminiKey == "" {
		c.Providers.GeminiKey = firstEnv("GEMINI_API_SECRET_KEY", "GEMINI_API_KEY")
	}
	if c.Providers.SelfHostedURL == "" {
		c.Providers.SelfHostedURL = os.Getenv("SELFHOSTED_API_URL")
	}

	return c, nil
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
