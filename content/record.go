package content

import (
	"html/template"
	"slices"
	"time"
)

// Kind tells posts, pages and other content apart by their directory.
type Kind int

const (
	KindOther Kind = iota
	KindPost
	KindPage
)

// Meta is the typed front matter of a content file.
type Meta struct {
	Title     string
	Date      time.Time
	Summary   string
	Tags      []string
	Published bool
	Author    string

	// Extra holds every front matter key not mapped to a field above.
	Extra map[string]any
}

// Record is one loaded content file. Records are never mutated after load;
// a reload replaces them.
type Record struct {
	// Path is relative to the content root, slash separated, without
	// extension: "posts/2020-01-05-hello".
	Path string
	Kind Kind
	Meta Meta
	Body []byte
	HTML template.HTML

	ModTime     time.Time
	Fingerprint string
}

// Slug is the part of a post's name after its date stamp. For pages it is
// the file name.
func (r *Record) Slug() string {
	if r.Kind == KindPost {
		return PostSlug(r.Path)
	}
	return baseName(r.Path)
}

// HasTag reports whether tag is one of the record's tags.
func (r *Record) HasTag(tag string) bool {
	return slices.Contains(r.Meta.Tags, tag)
}
