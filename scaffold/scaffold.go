// Package scaffold creates new post and page files with a front matter
// skeleton and opens them in the author's editor.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/obsoleter/plume/content"
)

// Templates contains the front matter skeletons.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

var (
	// ErrExists is returned instead of overwriting an existing file.
	ErrExists = errors.New("scaffold: file already exists")
	// ErrEmptySlug is returned for names without a single usable character.
	ErrEmptySlug = errors.New("scaffold: name produces an empty slug")
)

var skeletons = template.Must(template.New("").Funcs(template.FuncMap{
	"yaml": yamlScalar,
}).ParseFS(Templates, "templates/*.tmpl"))

// skeletonData holds the template variables passed to every skeleton.
type skeletonData struct {
	Title string
	Date  string
}

// Author scaffolds content files under Root.
type Author struct {
	Root    string // content root
	PostDir string // default "posts"
	PageDir string // default "pages"
	Editor  string // command line of the editor, e.g. "code -w"

	Now    func() time.Time
	Logger *slog.Logger
}

func (a *Author) setDefaults() {
	if a.PostDir == "" {
		a.PostDir = "posts"
	}
	if a.PageDir == "" {
		a.PageDir = "pages"
	}
	if a.Now == nil {
		a.Now = time.Now
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
}

// NewPost writes <root>/<posts>/<today>-<slug>.md and returns its path.
func (a *Author) NewPost(name string) (string, error) {
	a.setDefaults()
	slug := Slugify(name)
	if slug == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptySlug, name)
	}
	date := a.Now().Format(content.DateStampLayout)
	file := filepath.Join(a.Root, a.PostDir, date+"-"+slug+".md")
	return file, a.write(file, "post.md.tmpl", skeletonData{Title: name, Date: date})
}

// NewPage writes <root>/<pages>/<slug>.md and returns its path.
func (a *Author) NewPage(name string) (string, error) {
	a.setDefaults()
	slug := Slugify(name)
	if slug == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptySlug, name)
	}
	date := a.Now().Format(content.DateStampLayout)
	file := filepath.Join(a.Root, a.PageDir, slug+".md")
	return file, a.write(file, "page.md.tmpl", skeletonData{Title: name, Date: date})
}

func (a *Author) write(file, skeleton string, data skeletonData) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, file)
	}
	if err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}
	if err := skeletons.ExecuteTemplate(f, skeleton, data); err != nil {
		f.Close()
		return fmt.Errorf("scaffold: execute template %s: %w", skeleton, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}
	a.Logger.Info("created", "file", file)
	return nil
}

// yamlScalar renders s as a single-line YAML scalar, quoting it only when
// YAML requires.
func yamlScalar(s string) (string, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}
