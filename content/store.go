// Package content loads Markdown posts and pages from a directory tree and
// answers the listing queries the site routes are built on.
package content

import (
	"errors"
	"fmt"
	"hash/fnv"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/inful/mdfp"
)

// ErrNotFound is returned when no record has the requested path.
var ErrNotFound = errors.New("content: not found")

// ErrDateMismatch is returned by Load for a post whose front matter date
// differs from the date stamp of its file name. Such a post has no URL.
var ErrDateMismatch = errors.New("post date does not match file name")

// Renderer turns a Markdown body into HTML. key identifies the body's
// content and may be used for caching.
type Renderer interface {
	Render(key string, body []byte) (template.HTML, error)
}

// Options configures a Store.
type Options struct {
	Root      string // content directory
	PostDir   string // posts subdirectory, default "posts"
	PageDir   string // pages subdirectory, default "pages"
	Extension string // default ".md"
	Renderer  Renderer
	Logger    *slog.Logger
}

func (o *Options) setDefaults() {
	if o.PostDir == "" {
		o.PostDir = "posts"
	}
	if o.PageDir == "" {
		o.PageDir = "pages"
	}
	if o.Extension == "" {
		o.Extension = ".md"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Store is an in-memory snapshot of the content directory. Reads take a read
// lock; a reload swaps the whole snapshot under the write lock.
type Store struct {
	opts Options

	mu        sync.RWMutex
	records   []*Record
	byPath    map[string]*Record
	signature uint64
	loaded    time.Time
}

// NewStore creates a Store. Nothing is read until Load or Refresh.
func NewStore(opts Options) *Store {
	opts.setDefaults()
	return &Store{opts: opts}
}

// PostDir is the posts subdirectory used for record paths.
func (s *Store) PostDir() string { return s.opts.PostDir }

// PageDir is the pages subdirectory used for record paths.
func (s *Store) PageDir() string { return s.opts.PageDir }

// Load reads every content file, replacing the current snapshot.
func (s *Store) Load() error {
	files, sig, err := s.scan()
	if err != nil {
		return err
	}
	records := make([]*Record, 0, len(files))
	byPath := make(map[string]*Record, len(files))
	for _, f := range files {
		r, err := s.readRecord(f)
		if err != nil {
			return err
		}
		records = append(records, r)
		byPath[r.Path] = r
	}

	s.mu.Lock()
	s.records = records
	s.byPath = byPath
	s.signature = sig
	s.loaded = time.Now()
	s.mu.Unlock()

	s.opts.Logger.Debug("content loaded", "root", s.opts.Root, "records", len(records))
	return nil
}

// Stale reports whether files were added, removed or modified since the last
// load.
func (s *Store) Stale() (bool, error) {
	_, sig, err := s.scan()
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded.IsZero() || sig != s.signature, nil
}

// Refresh reloads the snapshot when it is stale and reports whether it did.
func (s *Store) Refresh() (bool, error) {
	stale, err := s.Stale()
	if err != nil || !stale {
		return false, err
	}
	if err := s.Load(); err != nil {
		return false, err
	}
	return true, nil
}

type scannedFile struct {
	abs     string
	rel     string
	modTime time.Time
}

// scan walks the content root in lexical order. The signature hashes every
// file's path, size and modification time.
func (s *Store) scan() ([]scannedFile, uint64, error) {
	var files []scannedFile
	h := fnv.New64a()
	err := filepath.WalkDir(s.opts.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), s.opts.Extension) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.opts.Root, p)
		if err != nil {
			return err
		}
		rel = strings.TrimSuffix(filepath.ToSlash(rel), s.opts.Extension)
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", rel, info.Size(), info.ModTime().UnixNano())
		files = append(files, scannedFile{abs: p, rel: rel, modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("content: scan %s: %w", s.opts.Root, err)
	}
	return files, h.Sum64(), nil
}

func (s *Store) kindOf(rel string) Kind {
	dir := filepath.ToSlash(filepath.Dir(rel))
	switch dir {
	case s.opts.PostDir:
		return KindPost
	case s.opts.PageDir:
		return KindPage
	}
	return KindOther
}

func (s *Store) readRecord(f scannedFile) (*Record, error) {
	src, err := os.ReadFile(f.abs)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	fm, body, format, err := Split(src)
	if err != nil {
		return nil, fmt.Errorf("content: %s: %w", f.rel, err)
	}
	fields, err := ParseFields(fm, format)
	if err != nil {
		return nil, fmt.Errorf("content: %s: front matter: %w", f.rel, err)
	}
	kind := s.kindOf(f.rel)
	meta, err := metaFromFields(fields, kind)
	if err != nil {
		return nil, fmt.Errorf("content: %s: %w", f.rel, err)
	}

	r := &Record{
		Path:        f.rel,
		Kind:        kind,
		Meta:        meta,
		Body:        body,
		ModTime:     f.modTime,
		Fingerprint: mdfp.CalculateFingerprintFromParts(string(fm), string(body)),
	}
	if kind == KindPost {
		stamp := meta.Date.Format(DateStampLayout)
		if !strings.HasPrefix(baseName(f.rel), stamp+"-") {
			return nil, fmt.Errorf("content: %s: %w: date is %s", f.rel, ErrDateMismatch, stamp)
		}
	}
	if s.opts.Renderer != nil {
		r.HTML, err = s.opts.Renderer.Render(r.Fingerprint, body)
		if err != nil {
			return nil, fmt.Errorf("content: %s: render: %w", f.rel, err)
		}
	}
	return r, nil
}

// All returns every record in discovery order.
func (s *Store) All() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Posts returns the published posts matching prefix. With sorted set they
// are ordered newest first; posts sharing a date keep discovery order.
func (s *Store) Posts(prefix DatePrefix, sorted bool) []*Record {
	s.mu.RLock()
	var posts []*Record
	for _, r := range s.records {
		if r.Kind == KindPost && r.Meta.Published && prefix.Match(s.opts.PostDir, r.Path) {
			posts = append(posts, r)
		}
	}
	s.mu.RUnlock()
	if sorted {
		sortByDateDesc(posts)
	}
	return posts
}

// Tagged returns every record carrying tag, newest first. Unpublished posts
// are included.
// TODO: decide whether drafts should leak into tag listings and filter on
// Published here if not.
func (s *Store) Tagged(tag string) []*Record {
	s.mu.RLock()
	var tagged []*Record
	for _, r := range s.records {
		if r.HasTag(tag) {
			tagged = append(tagged, r)
		}
	}
	s.mu.RUnlock()
	sortByDateDesc(tagged)
	return tagged
}

// Get returns the record stored at path.
func (s *Store) Get(path string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byPath[path]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// Pages returns every page record in discovery order.
func (s *Store) Pages() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pages []*Record
	for _, r := range s.records {
		if r.Kind == KindPage {
			pages = append(pages, r)
		}
	}
	return pages
}

// Tags returns the sorted, distinct tags of published posts.
func (s *Store) Tags() []string {
	set := make(map[string]struct{})
	for _, p := range s.Posts(DatePrefix{}, false) {
		for _, t := range p.Meta.Tags {
			set[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func sortByDateDesc(records []*Record) {
	slices.SortStableFunc(records, func(a, b *Record) int {
		return b.Meta.Date.Compare(a.Meta.Date)
	})
}
