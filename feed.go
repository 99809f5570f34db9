package plume

import (
	"cmp"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	atom "github.com/thomas11/atomgenerator"

	"github.com/obsoleter/plume/content"
	"github.com/obsoleter/plume/views"
)

// Feed generates the Atom document of the FeedSize most recent published
// posts. Entry content is the rendered HTML of each post; an entry's author
// is the post's own author, or the site author when it has none.
func (a *App) Feed() ([]byte, error) {
	posts := a.Store.Posts(content.DatePrefix{}, true)
	if len(posts) > a.Config.FeedSize {
		posts = posts[:a.Config.FeedSize]
	}

	// The newest post dates the feed so that a rebuild of unchanged content
	// yields the same bytes.
	updated := time.Now().UTC()
	if len(posts) > 0 {
		updated = posts[0].Meta.Date
	}

	feed := atom.Feed{
		Title:   a.Config.FeedTitle,
		Link:    a.absURL("/recent.atom"),
		PubDate: updated,
	}
	feed.AddAuthor(atom.Author{
		Name: cmp.Or(a.Config.Author, a.Config.Name),
		Uri:  a.absURL("/"),
	})

	for _, p := range posts {
		e := &atom.Entry{
			Title:       p.Meta.Title,
			Description: cmp.Or(p.Meta.Summary, p.Meta.Title),
			Link:        a.absURL(views.PostURL(p)),
			PubDate:     p.Meta.Date,
			Content:     string(p.HTML),
		}
		e.AddAuthor(atom.Author{Name: cmp.Or(p.Meta.Author, a.Config.Author, a.Config.Name)})
		for _, tag := range p.Meta.Tags {
			e.AddCategory(atom.Category{Term: tag})
		}
		feed.AddEntry(e)
	}

	if errs := feed.Validate(); len(errs) > 0 {
		for _, err := range errs {
			a.logger.Error("invalid atom feed", "err", err)
		}
		return nil, fmt.Errorf("plume: atom feed: %w", errs[0])
	}
	return feed.GenXml()
}

func (a *App) handleFeed(c echo.Context) error {
	b, err := a.Feed()
	if err != nil {
		return err
	}
	return renderDocument(c, "application/atom+xml; charset=utf-8", b)
}
