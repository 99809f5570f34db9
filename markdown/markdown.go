// Package markdown renders Markdown bodies to HTML with syntax-highlighted
// code blocks.
package markdown

import (
	"bytes"
	"html/template"
	"io"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/golang/groupcache/lru"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultStyle is the highlighting style used when none is configured.
const DefaultStyle = "tango"

const defaultCacheSize = 512

// Renderer converts Markdown to HTML. Rendered output is memoised by key in
// an LRU cache so that a content reload only renders files that changed.
type Renderer struct {
	md goldmark.Markdown

	mu    sync.Mutex
	cache *lru.Cache
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	style     string
	cacheSize int
}

// WithStyle selects the chroma style for code blocks.
func WithStyle(style string) Option {
	return func(c *config) { c.style = style }
}

// WithCacheSize bounds the number of rendered bodies kept in memory. Zero
// keeps the default.
func WithCacheSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	cfg := config{style: DefaultStyle, cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(cfg.style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Renderer{md: md, cache: lru.New(cfg.cacheSize)}
}

// Render converts body to HTML. A non-empty key is used to look up and store
// the result in the cache.
func (r *Renderer) Render(key string, body []byte) (template.HTML, error) {
	if key != "" {
		r.mu.Lock()
		v, ok := r.cache.Get(key)
		r.mu.Unlock()
		if ok {
			return v.(template.HTML), nil
		}
	}

	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "", err
	}
	out := template.HTML(buf.String())

	if key != "" {
		r.mu.Lock()
		r.cache.Add(key, out)
		r.mu.Unlock()
	}
	return out, nil
}

// Cached reports how many rendered bodies are held in the cache.
func (r *Renderer) Cached() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}

// WriteCSS writes the stylesheet for the class names emitted in code blocks.
// Unknown style names fall back to chroma's default style.
func WriteCSS(w io.Writer, style string) error {
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, styles.Get(style))
}
