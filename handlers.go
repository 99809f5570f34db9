package plume

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/obsoleter/plume/content"
	"github.com/obsoleter/plume/markdown"
	"github.com/obsoleter/plume/pagination"
	"github.com/obsoleter/plume/views"
)

const (
	tagTitle   = "Posts tagged <strong>%s</strong>"
	yearTitle  = "Posts from the year <strong>%s</strong>"
	monthTitle = "Posts from <strong>%s</strong>"
	dayTitle   = "Posts from <strong>%s</strong>"
)

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/static", a.Config.StaticDir)

	e.GET("/recent.atom", a.handleFeed)
	e.GET("/pygments.css", a.handlePygmentsCSS)
	e.GET("/404.html", a.handleNotFoundPage)
	e.GET("/sitemap.xml", a.handleSitemap)
	if a.registry != nil {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.registry}))
	}

	e.GET("/", a.handleIndex)
	e.GET("/page/:page/", a.handleIndex)
	e.GET("/tags/:tag/", a.handleTag)
	e.GET("/tags/:tag/:page/", a.handleTag)

	// The first segment is either a year or the name of a static page.
	e.GET("/:year/", a.handleYearOrPage)
	e.GET("/:year/page/:page/", a.handleArchive)
	e.GET("/:year/:month/", a.handleArchive)
	e.GET("/:year/:month/page/:page/", a.handleArchive)
	e.GET("/:year/:month/:day/", a.handleArchive)
	e.GET("/:year/:month/:day/page/:page/", a.handleArchive)
	e.GET("/:year/:month/:day/:slug/", a.handlePost)
}

func (a *App) common(meta views.PageMeta) views.Common {
	return views.Common{
		Site: a.siteConfig(),
		Meta: meta,
		Tags: a.Store.Tags(),
	}
}

func (a *App) handleIndex(c echo.Context) error {
	page, err := pageParam(c)
	if err != nil {
		return err
	}
	posts := a.Store.Posts(content.DatePrefix{}, true)
	pageURL := func(n int) string { return views.ListURL("/", n) }
	return a.renderListing(c, heading{}, pageURL, page, posts)
}

func (a *App) handleTag(c echo.Context) error {
	tag, err := pathParam(c, "tag")
	if err != nil {
		return err
	}
	page, err := pageParam(c)
	if err != nil {
		return err
	}
	pageURL := func(n int) string { return views.TagURL(tag, n) }
	return a.renderListing(c, newHeading(tagTitle, tag), pageURL, page, a.Store.Tagged(tag))
}

func (a *App) handleYearOrPage(c echo.Context) error {
	if _, err := parseNumber(c.Param("year")); err != nil {
		return a.handlePage(c)
	}
	return a.handleArchive(c)
}

func (a *App) handleArchive(c echo.Context) error {
	prefix, err := datePrefix(c)
	if err != nil {
		return err
	}
	page, err := pageParam(c)
	if err != nil {
		return err
	}
	t := prefix.Time()
	var h heading
	switch {
	case prefix.Month == 0:
		h = newHeading(yearTitle, t.Format("2006"))
	case prefix.Day == 0:
		h = newHeading(monthTitle, t.Format("Jan 2006"))
	default:
		h = newHeading(dayTitle, t.Format("Monday, Jan 02, 2006"))
	}
	base := views.ArchiveURL(prefix)
	pageURL := func(n int) string { return views.ListURL(base, n) }
	return a.renderListing(c, h, pageURL, page, a.Store.Posts(prefix, true))
}

// heading is the title of a filtered listing, as markup for the page body
// and as text for the document title.
type heading struct {
	html template.HTML
	text string
}

var stripStrong = strings.NewReplacer("<strong>", "", "</strong>", "")

func newHeading(format, value string) heading {
	return heading{
		html: template.HTML(fmt.Sprintf(format, template.HTMLEscapeString(value))),
		text: stripStrong.Replace(fmt.Sprintf(format, value)),
	}
}

func (a *App) renderListing(c echo.Context, h heading, pageURL func(int) string, page int, posts []*content.Record) error {
	p, err := pagination.New(page, a.Config.PerPage, len(posts))
	if err != nil {
		return err
	}

	return Render(c, a.Views.Index(views.ListView{
		Common: a.common(views.PageMeta{
			Title:       h.text,
			Description: a.Config.Description,
			URL:         a.absURL(pageURL(page)),
			OGType:      "website",
			JSONLD:      views.WebsiteJsonLD(a.siteConfig()),
		}),
		Heading: h.html,
		Posts:   pagination.Slice(p, posts),
		Nav:     views.NewNav(p, pageURL),
	}))
}

func (a *App) handlePost(c echo.Context) error {
	prefix, err := datePrefix(c)
	if err != nil {
		return err
	}
	slug, err := pathParam(c, "slug")
	if err != nil {
		return err
	}
	post, err := a.Store.Get(content.PostPath(a.Store.PostDir(), prefix.Time(), slug))
	if err != nil {
		return err
	}
	site := a.siteConfig()
	return Render(c, a.Views.Post(views.PostView{
		Common: a.common(views.PageMeta{
			Title:       post.Meta.Title,
			Description: post.Meta.Summary,
			URL:         a.absURL(views.PostURL(post)),
			OGType:      "article",
			JSONLD:      views.BlogPostingJsonLD(site, post),
		}),
		Post: post,
	}))
}

func (a *App) handlePage(c echo.Context) error {
	name, err := pathParam(c, "year")
	if err != nil {
		return err
	}
	page, err := a.Store.Get(content.PagePath(a.Store.PageDir(), name))
	if err != nil {
		return err
	}
	return Render(c, a.Views.Page(views.PageView{
		Common: a.common(views.PageMeta{
			Title:       page.Meta.Title,
			Description: page.Meta.Summary,
			URL:         a.absURL(views.PageURL(page)),
			OGType:      "website",
		}),
		Page: page,
	}))
}

func (a *App) handlePygmentsCSS(c echo.Context) error {
	var buf bytes.Buffer
	if err := markdown.WriteCSS(&buf, a.Config.HighlightStyle); err != nil {
		return err
	}
	return renderDocument(c, "text/css; charset=utf-8", buf.Bytes())
}

// handleNotFoundPage serves the 404 view with status 200 so that it can be
// frozen as a plain file.
func (a *App) handleNotFoundPage(c echo.Context) error {
	return Render(c, a.notFoundView())
}

func (a *App) notFoundView() templ.Component {
	return a.Views.NotFound(views.NotFoundView{
		Common: a.common(views.PageMeta{
			Title:  "Page not found",
			OGType: "website",
		}),
	})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if errors.Is(err, content.ErrNotFound) || errors.Is(err, pagination.ErrOutOfRange) {
		err = echo.ErrNotFound
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.notFoundView())
		return
	}
	if !ok || he.Code >= 500 {
		a.logger.Error("server error", "uri", c.Request().RequestURI, "err", err)
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// pathParam returns the decoded value of a path parameter. Echo matches
// routes against the raw path when the request has one, leaving parameters
// escaped; otherwise they are already decoded.
func pathParam(c echo.Context, name string) (string, error) {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v, nil
	}
	v, err := url.PathUnescape(v)
	if err != nil {
		return "", echo.ErrNotFound
	}
	return v, nil
}

// pageParam parses the optional :page parameter. A missing parameter is
// page 1; anything that is not a positive integer is not found.
func pageParam(c echo.Context) (int, error) {
	raw := c.Param("page")
	if raw == "" {
		return 1, nil
	}
	n, err := parseNumber(raw)
	if err != nil || n < 1 {
		return 0, echo.ErrNotFound
	}
	return n, nil
}

// datePrefix parses the :year, :month and :day parameters present on the
// route. Impossible dates such as 2020-02-30 are not found.
func datePrefix(c echo.Context) (content.DatePrefix, error) {
	var d content.DatePrefix
	for _, f := range []struct {
		name string
		dst  *int
	}{{"year", &d.Year}, {"month", &d.Month}, {"day", &d.Day}} {
		raw := c.Param(f.name)
		if raw == "" {
			break
		}
		n, err := parseNumber(raw)
		if err != nil {
			return d, echo.ErrNotFound
		}
		*f.dst = n
	}
	if d.Year < 1 || !d.Valid() {
		return d, echo.ErrNotFound
	}
	return d, nil
}

// parseNumber accepts decimal digits only, so "+5" and "-1" are rejected.
func parseNumber(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}
