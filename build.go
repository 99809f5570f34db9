package plume

import (
	"context"
	"fmt"
	"time"

	"github.com/obsoleter/plume/content"
	"github.com/obsoleter/plume/freeze"
	"github.com/obsoleter/plume/pagination"
	"github.com/obsoleter/plume/publish"
	"github.com/obsoleter/plume/views"
)

// FreezeURLs enumerates every URL of the site: each listing with all of its
// pages, every published post, every draft a tag listing links to, every
// static page and the generated documents. Only dates that published posts
// fall on are enumerated.
func (a *App) FreezeURLs() []string {
	posts := a.Store.Posts(content.DatePrefix{}, true)
	urls := []string{}

	listing := func(total int, pageURL func(int) string) {
		p, err := pagination.New(1, a.Config.PerPage, total)
		if err != nil {
			return
		}
		for n := 1; n <= p.Pages(); n++ {
			urls = append(urls, pageURL(n))
		}
	}

	listing(len(posts), func(n int) string { return views.ListURL("/", n) })

	// Tag listings include drafts, so the drafts they link to are frozen
	// too, along with the listings of the drafts' own tags.
	tags := a.Store.Tags()
	seenTag := make(map[string]bool, len(tags))
	for _, tag := range tags {
		seenTag[tag] = true
	}
	var drafts []*content.Record
	seenDraft := make(map[string]bool)
	for i := 0; i < len(tags); i++ {
		tag := tags[i]
		tagged := a.Store.Tagged(tag)
		listing(len(tagged), func(n int) string { return views.TagURL(tag, n) })
		for _, r := range tagged {
			if r.Kind != content.KindPost || r.Meta.Published || seenDraft[r.Path] {
				continue
			}
			seenDraft[r.Path] = true
			drafts = append(drafts, r)
			for _, t := range r.Meta.Tags {
				if !seenTag[t] {
					seenTag[t] = true
					tags = append(tags, t)
				}
			}
		}
	}

	for _, group := range [][]content.DatePrefix{content.Years(posts), content.Months(posts), content.Days(posts)} {
		for _, d := range group {
			base := views.ArchiveURL(d)
			listing(len(a.Store.Posts(d, false)), func(n int) string { return views.ListURL(base, n) })
		}
	}

	for _, p := range append(posts, drafts...) {
		urls = append(urls, views.PostURL(p))
	}
	for _, p := range a.Store.Pages() {
		if _, err := parseNumber(p.Slug()); err == nil {
			a.logger.Warn("page name is a number and is shadowed by the year archive", "page", p.Path)
			continue
		}
		urls = append(urls, views.PageURL(p))
	}

	return append(urls, "/recent.atom", "/pygments.css", "/404.html", "/sitemap.xml")
}

// Build reloads the content and freezes the whole site into
// Config.OutputDir. The build is recorded in the history when enabled.
func (a *App) Build(ctx context.Context) (*freeze.Result, error) {
	started := time.Now()
	res, err := a.build(ctx)

	var files int
	var size int64
	if res != nil {
		files, size = len(res.Files), res.Bytes()
	}
	a.Metrics.ObserveBuild(time.Since(started), files, size, err)

	if a.History != nil {
		id, herr := a.History.Record(ctx, a.Config.OutputDir, started, res, err)
		if herr != nil {
			a.logger.Error("recording build failed", "err", herr)
		} else {
			a.logger.Debug("build recorded", "id", id)
		}
	}
	return res, err
}

func (a *App) build(ctx context.Context) (*freeze.Result, error) {
	if err := a.Reload(); err != nil {
		return nil, err
	}
	f := freeze.New(a.Echo, freeze.Options{
		OutputDir: a.Config.OutputDir,
		StaticDir: a.Config.StaticDir,
		Protected: a.protected(),
		Logger:    a.logger,
	})
	res, err := f.Freeze(ctx, a.FreezeURLs())
	if err != nil {
		return nil, fmt.Errorf("plume: build: %w", err)
	}
	return res, nil
}

func (a *App) protected() []string {
	if len(a.Config.Protected) == 0 {
		return nil
	}
	return append(append([]string{}, freeze.DefaultProtected...), a.Config.Protected...)
}

// Publish ships the output directory through p. target names the publisher
// kind in metrics and logs, e.g. "s3" or "git".
func (a *App) Publish(ctx context.Context, target string, p publish.Publisher) (publish.Report, error) {
	rep, err := p.Publish(ctx, a.Config.OutputDir)
	a.Metrics.ObservePublish(target, err)
	if err != nil {
		return rep, fmt.Errorf("plume: publish %s: %w", target, err)
	}
	a.logger.Info("site published", "target", rep.Target, "files", rep.Files, "bytes", rep.Bytes, "revision", rep.Revision)
	return rep, nil
}
