package plume

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
	prom "github.com/prometheus/client_golang/prometheus"
)

// SiteConfig holds all configuration for a plume site.
type SiteConfig struct {
	Name        string `toml:"name"`        // Site name (default "Blog")
	URL         string `toml:"url"`         // Canonical URL (default "http://localhost:5000/")
	Description string `toml:"description"` // Site description for the feed and meta tags
	Author      string `toml:"author"`      // Default author of every post

	Addr string `toml:"addr"` // Listen address (default ":5000")

	ContentDir  string `toml:"content_dir"`  // default "content"
	PostDir     string `toml:"post_dir"`     // default "posts"
	PageDir     string `toml:"page_dir"`     // default "pages"
	Extension   string `toml:"extension"`    // default ".md"
	StaticDir   string `toml:"static_dir"`   // default "static"
	TemplateDir string `toml:"template_dir"` // overrides for the embedded templates
	OutputDir   string `toml:"output_dir"`   // default "build"

	DatabasePath string `toml:"database"` // build history, default "data/plume.db"

	PerPage        int    `toml:"per_page"`        // default 15
	FeedSize       int    `toml:"feed_size"`       // default 15
	FeedTitle      string `toml:"feed_title"`      // default "Recent Articles"
	HighlightStyle string `toml:"highlight_style"` // default "tango"
	RenderCache    int    `toml:"render_cache"`    // rendered bodies kept in memory, default 512

	AutoReload bool     `toml:"auto_reload"` // check content mtimes on every request
	Protected  []string `toml:"protected"`   // output entries kept across builds
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:5000/"
	}
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.PostDir == "" {
		c.PostDir = "posts"
	}
	if c.PageDir == "" {
		c.PageDir = "pages"
	}
	if c.Extension == "" {
		c.Extension = ".md"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.OutputDir == "" {
		c.OutputDir = "build"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/plume.db"
	}
	if c.PerPage <= 0 {
		c.PerPage = 15
	}
	if c.FeedSize <= 0 {
		c.FeedSize = 15
	}
	if c.FeedTitle == "" {
		c.FeedTitle = "Recent Articles"
	}
	if c.HighlightStyle == "" {
		c.HighlightStyle = "tango"
	}
	if c.RenderCache <= 0 {
		c.RenderCache = 512
	}
}

// LoadConfig reads a TOML site configuration. It is not an error if the file
// does not exist; the zero config is returned and defaults apply later.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("plume: read config: %w", err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("plume: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the logger used by the app and its components.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithRegistry registers the app's metrics on reg and serves it on /metrics.
func WithRegistry(reg *prom.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// WithHistory records every build in the SQLite database at
// SiteConfig.DatabasePath.
func WithHistory() Option {
	return func(a *App) {
		a.recordHistory = true
	}
}
