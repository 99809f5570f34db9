// Package views renders the site's HTML pages. Each page is an html/template
// executed inside the shared base layout and exposed as a templ.Component.
package views

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

const layout = "base.html"

var pageNames = []string{"index.html", "post.html", "page.html", "404.html"}

// Set holds one parsed template per page.
type Set struct {
	pages map[string]*template.Template
}

// Load parses the page templates. Files present in dir replace the embedded
// defaults of the same name; dir may be empty.
func Load(dir string) (*Set, error) {
	var override fs.FS
	if dir != "" {
		override = os.DirFS(dir)
	}
	open := func(name string) (string, error) {
		fsys, p := fs.FS(defaultTemplates), "templates/"+name
		if override != nil {
			if _, err := fs.Stat(override, name); err == nil {
				fsys, p = override, name
			}
		}
		b, err := fs.ReadFile(fsys, p)
		return string(b), err
	}

	base, err := open(layout)
	if err != nil {
		return nil, fmt.Errorf("views: %w", err)
	}
	root, err := template.New(layout).Funcs(funcs).Parse(base)
	if err != nil {
		return nil, fmt.Errorf("views: parse %s: %w", layout, err)
	}

	s := &Set{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		src, err := open(name)
		if err != nil {
			return nil, fmt.Errorf("views: %w", err)
		}
		t, err := template.Must(root.Clone()).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", name, err)
		}
		s.pages[name] = t
	}
	return s, nil
}

var funcs = template.FuncMap{
	"postURL":    PostURL,
	"pageURL":    PageURL,
	"tagURL":     func(tag string) string { return TagURL(tag, 1) },
	"formatDate": formatDate,
	"isoDate":    isoDate,
}

func (s *Set) component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := s.pages[name]
		if !ok {
			return errors.New("views: no template " + name)
		}
		return t.ExecuteTemplate(w, "base", data)
	})
}

// Index renders a post listing.
func (s *Set) Index(v ListView) templ.Component { return s.component("index.html", v) }

// Post renders a single post.
func (s *Set) Post(v PostView) templ.Component { return s.component("post.html", v) }

// Page renders a static page.
func (s *Set) Page(v PageView) templ.Component { return s.component("page.html", v) }

// NotFound renders the 404 page.
func (s *Set) NotFound(v NotFoundView) templ.Component { return s.component("404.html", v) }
