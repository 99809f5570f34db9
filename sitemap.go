package plume

import (
	"encoding/xml"

	"github.com/labstack/echo/v4"

	"github.com/obsoleter/plume/content"
	"github.com/obsoleter/plume/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Sitemap lists the index, every published post and every page.
func (a *App) Sitemap() ([]byte, error) {
	urls := []sitemapURL{
		{Loc: a.absURL("/")},
	}
	for _, p := range a.Store.Posts(content.DatePrefix{}, true) {
		urls = append(urls, sitemapURL{
			Loc:     a.absURL(views.PostURL(p)),
			LastMod: p.Meta.Date.Format(content.DateStampLayout),
		})
	}
	for _, p := range a.Store.Pages() {
		u := sitemapURL{Loc: a.absURL(views.PageURL(p))}
		if !p.Meta.Date.IsZero() {
			u.LastMod = p.Meta.Date.Format(content.DateStampLayout)
		}
		urls = append(urls, u)
	}
	b, err := xml.Marshal(sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

func (a *App) handleSitemap(c echo.Context) error {
	b, err := a.Sitemap()
	if err != nil {
		return err
	}
	return renderDocument(c, "application/xml; charset=utf-8", b)
}
