package views

import (
	"cmp"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/obsoleter/plume/content"
	"github.com/obsoleter/plume/pagination"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PostURL is the site-relative URL of a post: /2020/01/05/slug/. The slug
// is escaped.
func PostURL(r *content.Record) string {
	d := r.Meta.Date
	return fmt.Sprintf("/%04d/%02d/%02d/%s/", d.Year(), int(d.Month()), d.Day(), url.PathEscape(r.Slug()))
}

// PageURL is the site-relative URL of a static page: /about/.
func PageURL(r *content.Record) string {
	return "/" + url.PathEscape(r.Slug()) + "/"
}

// TagURL is the URL of page n of a tag listing. Page 1 has no number.
func TagURL(tag string, n int) string {
	u := "/tags/" + url.PathEscape(tag) + "/"
	if n > 1 {
		u += fmt.Sprintf("%d/", n)
	}
	return u
}

// ListURL is the URL of page n of a listing rooted at base, which must end in
// a slash: "/" or "/2020/01/".
func ListURL(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%spage/%d/", base, n)
}

// ArchiveURL is the root of the archive a date prefix selects.
func ArchiveURL(d content.DatePrefix) string {
	switch {
	case d.Year == 0:
		return "/"
	case d.Month == 0:
		return fmt.Sprintf("/%04d/", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("/%04d/%02d/", d.Year, d.Month)
	}
	return fmt.Sprintf("/%04d/%02d/%02d/", d.Year, d.Month, d.Day)
}

// NewNav builds the pagination control for p. pageURL maps a page number to
// its URL.
func NewNav(p *pagination.Pagination, pageURL func(int) string) Nav {
	var nav Nav
	if p.HasPrev() {
		nav.Prev = pageURL(p.Prev())
	}
	if p.HasNext() {
		nav.Next = pageURL(p.Next())
	}
	if !p.Multiple() {
		return nav
	}
	for _, n := range p.Links() {
		l := NavLink{Number: n, Current: n == p.Page}
		if n != 0 {
			l.URL = pageURL(n)
		}
		nav.Links = append(nav.Links, l)
	}
	return nav
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

func isoDate(t time.Time) string {
	return t.Format(content.DateStampLayout)
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) template.JS {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = person(cfg.Author)
	}
	return marshalJS(data)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
// The post's own author wins over the site author.
func BlogPostingJsonLD(cfg SiteConfig, post *content.Record) template.JS {
	postURL := strings.TrimSuffix(cfg.URL, "/") + PostURL(post)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Meta.Title,
		"description":   post.Meta.Summary,
		"datePublished": isoDate(post.Meta.Date),
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if author := cmp.Or(post.Meta.Author, cfg.Author); author != "" {
		data["author"] = person(author)
	}
	if len(post.Meta.Tags) > 0 {
		data["keywords"] = strings.Join(post.Meta.Tags, ", ")
	}
	return marshalJS(data)
}

func person(name string) map[string]string {
	return map[string]string{"@type": "Person", "name": name}
}

func marshalJS(data map[string]interface{}) template.JS {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}
