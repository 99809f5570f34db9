package content

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the syntax of a front matter block.
type Format int

const (
	// FormatBare is a YAML block at the top of the file ended by the first
	// blank line, with no delimiters.
	FormatBare Format = iota
	FormatYAML
	FormatTOML
)

var (
	// ErrMissingClosingDelimiter is returned when a file opens a delimited
	// front matter block and never closes it.
	ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

	errMissingTitle = errors.New("front matter: title is required")
	errMissingDate  = errors.New("front matter: date is required for posts")
)

// tomlDelim splits out +++ delimited front matter.
var tomlDelim = regexp.MustCompile(`(?m)^\s*\+\+\+\s*$`)

// Split separates front matter from the Markdown body.
func Split(src []byte) (fm []byte, body []byte, format Format, err error) {
	nl := "\n"
	if i := bytes.IndexByte(src, '\n'); i > 0 && src[i-1] == '\r' {
		nl = "\r\n"
	}

	switch {
	case bytes.HasPrefix(src, []byte("---"+nl)):
		rest := src[len("---"+nl):]
		if bytes.HasPrefix(rest, []byte("---"+nl)) {
			return []byte{}, rest[len("---"+nl):], FormatYAML, nil
		}
		closing := []byte(nl + "---" + nl)
		idx := bytes.Index(rest, closing)
		if idx < 0 {
			if bytes.HasSuffix(rest, []byte(nl+"---")) {
				return rest[:len(rest)-len(nl+"---")], nil, FormatYAML, nil
			}
			return nil, nil, FormatYAML, ErrMissingClosingDelimiter
		}
		return rest[:idx+len(nl)], rest[idx+len(closing):], FormatYAML, nil

	case bytes.HasPrefix(bytes.TrimLeft(src, " \t\r\n"), []byte("+++")):
		parts := tomlDelim.Split(string(src), 3)
		if len(parts) != 3 {
			return nil, nil, FormatTOML, ErrMissingClosingDelimiter
		}
		return []byte(strings.TrimSpace(parts[1])), []byte(strings.TrimLeft(parts[2], "\r\n")), FormatTOML, nil
	}

	// Bare block: everything up to the first whitespace-only line.
	lines := strings.SplitAfter(string(src), "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			return []byte(strings.Join(lines[:i], "")), []byte(strings.Join(lines[i+1:], "")), FormatBare, nil
		}
	}
	return src, nil, FormatBare, nil
}

// ParseFields decodes a front matter block into a generic map.
func ParseFields(fm []byte, format Format) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(fm)) == 0 {
		return fields, nil
	}
	var err error
	if format == FormatTOML {
		err = toml.Unmarshal(fm, &fields)
	} else {
		err = yaml.Unmarshal(fm, &fields)
	}
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// metaFromFields validates fields and maps them onto Meta.
func metaFromFields(fields map[string]any, kind Kind) (Meta, error) {
	var m Meta
	for k, v := range fields {
		var err error
		switch k {
		case "title":
			m.Title, err = asString(v)
		case "summary":
			m.Summary, err = asString(v)
		case "author":
			m.Author, err = asString(v)
		case "date":
			m.Date, err = asDate(v)
		case "tags":
			m.Tags, err = asTags(v)
		case "published":
			m.Published, err = asBool(v)
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = v
		}
		if err != nil {
			return Meta{}, fmt.Errorf("front matter: %s: %w", k, err)
		}
	}
	if strings.TrimSpace(m.Title) == "" {
		return Meta{}, errMissingTitle
	}
	if kind == KindPost && m.Date.IsZero() {
		return Meta{}, errMissingDate
	}
	return m, nil
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case int, int64, float64, bool:
		return fmt.Sprint(s), nil
	}
	return "", fmt.Errorf("unexpected %T", v)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func asDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return d, nil
	case toml.LocalDate:
		return d.AsTime(time.UTC), nil
	case toml.LocalDateTime:
		return d.AsTime(time.UTC), nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	return time.Time{}, fmt.Errorf("unexpected %T", v)
}

func asTags(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		var tags []string
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				tags = append(tags, s)
			}
		}
		return tags, nil
	case []any:
		tags := make([]string, 0, len(t))
		for _, item := range t {
			s, err := asString(item)
			if err != nil {
				return nil, err
			}
			if s = strings.TrimSpace(s); s != "" {
				tags = append(tags, s)
			}
		}
		return tags, nil
	case []string:
		return t, nil
	}
	return nil, fmt.Errorf("unexpected %T", v)
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	}
	return false, fmt.Errorf("unexpected %T", v)
}
