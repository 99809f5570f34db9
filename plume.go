// Package plume is a flat-file blog engine built with Go, Echo, and templ.
// Posts and pages are Markdown files with front matter; the same App serves
// them live and freezes them into a static site.
package plume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/obsoleter/plume/content"
	"github.com/obsoleter/plume/markdown"
	"github.com/obsoleter/plume/metrics"
	"github.com/obsoleter/plume/views"
)

// App is the central plume application. It wires together the content store,
// the Markdown renderer, the templates, the handlers and the middleware.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *content.Store
	Markdown *markdown.Renderer
	Views    *views.Set
	Metrics  *metrics.Recorder
	History  *History // nil unless WithHistory is given

	logger        *slog.Logger
	registry      *prom.Registry
	recordHistory bool
}

// New creates an App for cfg and loads the content directory. Any front
// matter error in the content is returned here.
func New(cfg SiteConfig, opts ...Option) (*App, error) {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	a.Markdown = markdown.New(markdown.WithStyle(cfg.HighlightStyle), markdown.WithCacheSize(cfg.RenderCache))
	a.Store = content.NewStore(content.Options{
		Root:      cfg.ContentDir,
		PostDir:   cfg.PostDir,
		PageDir:   cfg.PageDir,
		Extension: cfg.Extension,
		Renderer:  a.Markdown,
		Logger:    a.logger,
	})

	set, err := views.Load(cfg.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("plume: load templates: %w", err)
	}
	a.Views = set

	if a.registry != nil {
		a.Metrics = metrics.NewRecorder(a.registry)
	} else {
		a.Metrics = metrics.NewRecorder(nil)
	}

	if err := a.Reload(); err != nil {
		return nil, err
	}

	if a.recordHistory {
		h, err := OpenHistory(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("plume: open history: %w", err)
		}
		a.History = h
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

// Reload rereads the whole content directory.
func (a *App) Reload() error {
	err := a.Store.Load()
	a.Metrics.ObserveReload(len(a.Store.All()), err)
	if err != nil {
		return fmt.Errorf("plume: load content: %w", err)
	}
	return nil
}

// refresh reloads the content when any file changed since the last load.
func (a *App) refresh() error {
	reloaded, err := a.Store.Refresh()
	if err != nil {
		a.Metrics.ObserveReload(0, err)
		return fmt.Errorf("plume: reload content: %w", err)
	}
	if reloaded {
		a.Metrics.ObserveReload(len(a.Store.All()), nil)
		a.logger.Info("content reloaded", "root", a.Config.ContentDir)
	}
	return nil
}

// Serve listens on Config.Addr until ctx is cancelled, then shuts the server
// down gracefully.
func (a *App) Serve(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", a.Config.Addr, "url", a.Config.URL)
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("plume: shutdown: %w", err)
	}
	return <-errc
}

// Close releases the build history database, if open.
func (a *App) Close() error {
	if a.History != nil {
		return a.History.Close()
	}
	return nil
}

func (a *App) siteConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

// absURL makes a site-relative URL absolute against Config.URL.
func (a *App) absURL(rel string) string {
	return strings.TrimSuffix(a.Config.URL, "/") + rel
}
