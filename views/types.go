package views

import (
	"html/template"

	"github.com/obsoleter/plume/content"
)

// SiteConfig holds the site-wide settings every template can read.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      template.JS
}

// Common is embedded in every view.
type Common struct {
	Site SiteConfig
	Meta PageMeta
	Tags []string // tag cloud
}

// ListView is a paginated listing of posts: the index, a tag or a date archive.
type ListView struct {
	Common
	Heading template.HTML // empty on the index
	Posts   []*content.Record
	Nav     Nav
}

// PostView is a single post.
type PostView struct {
	Common
	Post *content.Record
}

// PageView is a single static page.
type PageView struct {
	Common
	Page *content.Record
}

// NotFoundView is the 404 page.
type NotFoundView struct {
	Common
}

// Nav is the pagination control of a listing.
type Nav struct {
	Prev  string // empty when there is no previous page
	Next  string
	Links []NavLink
}

// NavLink is one entry of the pagination control. A gap has no number.
type NavLink struct {
	Number  int
	URL     string
	Current bool
}

// Gap reports whether the link stands for skipped pages.
func (l NavLink) Gap() bool { return l.Number == 0 }
