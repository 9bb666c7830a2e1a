package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PIXERY_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Gallery.PageSize != 50 {
		t.Errorf("page size = %d, want 50", c.Gallery.PageSize)
	}
	if c.Jobs.FastPollSeconds != 2 || c.Jobs.SlowPollSeconds != 10 {
		t.Errorf("poll defaults = %+v", c.Jobs)
	}
	if c.DatabasePath() != filepath.Join(c.Archive.Root, "index.sqlite") {
		t.Errorf("database path = %q, want it under the archive root", c.DatabasePath())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PIXERY_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("PIXERY_ARCHIVE_ROOT", "/tmp/pixery-test")
	t.Setenv("PIXERY_GALLERY_PAGE_SIZE", "25")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Archive.Root != "/tmp/pixery-test" {
		t.Errorf("archive root = %q", c.Archive.Root)
	}
	if c.Gallery.PageSize != 25 {
		t.Errorf("page size = %d, want the env override", c.Gallery.PageSize)
	}
	if c.GenerationsDir() != filepath.Join("/tmp/pixery-test", "generations") {
		t.Errorf("generations dir = %q", c.GenerationsDir())
	}
}

func TestConfigFileIsRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[gallery]\npage_size = 12\n\n[providers]\nfal_key = \"fk\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PIXERY_CONFIG", path)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Gallery.PageSize != 12 {
		t.Errorf("page size = %d, want the file value", c.Gallery.PageSize)
	}
	if c.Providers.FalKey != "fk" {
		t.Errorf("fal key = %q, want the file value", c.Providers.FalKey)
	}
}

func TestProviderEnvFallbacks(t *testing.T) {
	t.Setenv("PIXERY_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("OPENAI_API_KEY", "ok")
	t.Setenv("FAL_KEY", "fk")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Providers.OpenAIKey != "ok" || c.Providers.FalKey != "fk" {
		t.Errorf("provider keys = %+v, want the conventional env vars", c.Providers)
	}
}
