// Package freeze renders a set of URLs through an http.Handler and writes the
// responses to a static file tree.
package freeze

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/otiai10/copy"
)

// DefaultProtected lists the output entries that survive clearing.
var DefaultProtected = []string{".git", ".gitignore", ".hg", ".svn", "CNAME", ".nojekyll"}

// ErrStatus is returned when a URL does not render with status 200.
var ErrStatus = errors.New("freeze: unexpected status")

// Options configures a Freezer.
type Options struct {
	OutputDir    string
	StaticDir    string   // copied into the output, optional
	StaticPrefix string   // URL prefix of static files, default "static"
	Protected    []string // top-level output entries never removed, default DefaultProtected
	Logger       *slog.Logger
}

func (o *Options) setDefaults() {
	if o.StaticPrefix == "" {
		o.StaticPrefix = "static"
	}
	if o.Protected == nil {
		o.Protected = DefaultProtected
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// File is one file written by a freeze.
type File struct {
	Path   string // relative to the output directory, slash separated
	URL    string // empty for copied static files
	Size   int64
	SHA256 string
}

// Result describes a completed freeze.
type Result struct {
	Files    []File
	Started  time.Time
	Finished time.Time
}

// Bytes is the total size of all written files.
func (r *Result) Bytes() int64 {
	var n int64
	for _, f := range r.Files {
		n += f.Size
	}
	return n
}

// Freezer writes a static copy of a site.
type Freezer struct {
	handler http.Handler
	opts    Options
}

// New creates a Freezer that renders through h.
func New(h http.Handler, opts Options) *Freezer {
	opts.setDefaults()
	return &Freezer{handler: h, opts: opts}
}

// Freeze clears the output directory, renders every URL and copies the
// static directory. The first failure aborts the whole run.
func (f *Freezer) Freeze(ctx context.Context, urls []string) (*Result, error) {
	res := &Result{Started: time.Now()}
	out := f.opts.OutputDir
	if out == "" {
		return nil, errors.New("freeze: no output directory")
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, fmt.Errorf("freeze: %w", err)
	}
	if err := f.clear(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}

		file, err := f.render(ctx, u)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, file)
	}

	static, err := f.copyStatic()
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, static...)
	res.Finished = time.Now()

	f.opts.Logger.Info("site frozen", "dir", out, "files", len(res.Files), "bytes", res.Bytes(),
		"took", res.Finished.Sub(res.Started))
	return res, nil
}

// clear removes every top-level entry of the output directory that is not
// protected.
func (f *Freezer) clear() error {
	entries, err := os.ReadDir(f.opts.OutputDir)
	if err != nil {
		return fmt.Errorf("freeze: %w", err)
	}
	for _, e := range entries {
		if slices.Contains(f.opts.Protected, e.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(f.opts.OutputDir, e.Name())); err != nil {
			return fmt.Errorf("freeze: clear: %w", err)
		}
	}
	return nil
}

func (f *Freezer) render(ctx context.Context, u string) (File, error) {
	rel, err := OutputPath(u)
	if err != nil {
		return File{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return File{}, fmt.Errorf("freeze: GET %s: %w", u, err)
	}
	req.RequestURI = u
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		return File{}, fmt.Errorf("%w: GET %s: %d", ErrStatus, u, rec.Code)
	}

	body := rec.Body.Bytes()
	dst := filepath.Join(f.opts.OutputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return File{}, fmt.Errorf("freeze: %w", err)
	}
	if err := os.WriteFile(dst, body, 0o644); err != nil {
		return File{}, fmt.Errorf("freeze: %w", err)
	}
	sum := sha256.Sum256(body)
	f.opts.Logger.Debug("frozen", "url", u, "file", rel)
	return File{Path: rel, URL: u, Size: int64(len(body)), SHA256: hex.EncodeToString(sum[:])}, nil
}

// OutputPath maps a site URL to its file in the output tree. URLs ending in a
// slash become index.html files. Escaped characters are decoded so that a
// static file server finds the file under the request path.
func OutputPath(u string) (string, error) {
	if !strings.HasPrefix(u, "/") {
		return "", fmt.Errorf("freeze: url %q is not site-relative", u)
	}
	p := u
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p, err := url.PathUnescape(p)
	if err != nil {
		return "", fmt.Errorf("freeze: url %q: %w", u, err)
	}
	if strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	clean := path.Clean(p)
	if clean != p {
		return "", fmt.Errorf("freeze: url %q is not canonical", u)
	}
	return strings.TrimPrefix(clean, "/"), nil
}

func (f *Freezer) copyStatic() ([]File, error) {
	src := f.opts.StaticDir
	if src == "" {
		return nil, nil
	}
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	dest := filepath.Join(f.opts.OutputDir, filepath.FromSlash(f.opts.StaticPrefix))
	f.opts.Logger.Debug("copying static files", "from", src, "to", dest)
	if err := copy.Copy(src, dest); err != nil {
		return nil, fmt.Errorf("freeze: copy static: %w", err)
	}

	var files []File
	err := filepath.WalkDir(dest, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(f.opts.OutputDir, p)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(b)
		files = append(files, File{Path: filepath.ToSlash(rel), Size: int64(len(b)), SHA256: hex.EncodeToString(sum[:])})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("freeze: %w", err)
	}
	return files, nil
}
