package plume

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "plume.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "" {
		t.Errorf("Name = %q, want empty", cfg.Name)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plume.toml")
	data := `name = "Field Notes"
url = "https://notes.example.com/"
per_page = 5
protected = ["README.md"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.setDefaults()

	if cfg.Name != "Field Notes" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.PerPage != 5 {
		t.Errorf("PerPage = %d, want 5", cfg.PerPage)
	}
	if cfg.FeedSize != 15 {
		t.Errorf("FeedSize = %d, want default 15", cfg.FeedSize)
	}
	if cfg.RenderCache != 512 {
		t.Errorf("RenderCache = %d, want default 512", cfg.RenderCache)
	}
	if cfg.ContentDir != "content" || cfg.PostDir != "posts" || cfg.PageDir != "pages" {
		t.Errorf("content dirs = %q %q %q", cfg.ContentDir, cfg.PostDir, cfg.PageDir)
	}
	if len(cfg.Protected) != 1 || cfg.Protected[0] != "README.md" {
		t.Errorf("Protected = %v", cfg.Protected)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plume.toml")
	if err := os.WriteFile(path, []byte("name = \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
