package content

import (
	"cmp"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"
)

// DateStampLayout is the date prefix of every post file name.
const DateStampLayout = "2006-01-02"

// PostSlug strips the date stamp from a post path:
// "posts/2020-01-05-hello-world" becomes "hello-world".
func PostSlug(p string) string {
	parts := strings.SplitN(baseName(p), "-", 4)
	return parts[len(parts)-1]
}

// PostPath is the record path of the post published on date with slug.
func PostPath(postDir string, date time.Time, slug string) string {
	return postDir + "/" + date.Format(DateStampLayout) + "-" + slug
}

// PagePath is the record path of a static page.
func PagePath(pageDir, name string) string {
	return pageDir + "/" + name
}

func baseName(p string) string {
	return path.Base(p)
}

// DatePrefix selects posts by date stamp. Zero fields are unset: a prefix
// with only Year matches a whole year, Year and Month a month, all three a
// single day.
type DatePrefix struct {
	Year  int
	Month int
	Day   int
}

// Valid reports whether the prefix names a real calendar year, month or day.
func (d DatePrefix) Valid() bool {
	switch {
	case d.Year == 0:
		return d.Month == 0 && d.Day == 0
	case d.Year < 1 || d.Year > 9999:
		return false
	case d.Month == 0:
		return d.Day == 0
	case d.Month < 1 || d.Month > 12:
		return false
	case d.Day == 0:
		return true
	}
	t := d.Time()
	return t.Day() == d.Day && int(t.Month()) == d.Month
}

// Time is the first instant covered by the prefix.
func (d DatePrefix) Time() time.Time {
	return time.Date(d.Year, time.Month(max(d.Month, 1)), max(d.Day, 1), 0, 0, 0, 0, time.UTC)
}

// Stamp is the file name prefix the date selects, including the trailing
// dash so that "2020-1" can never match "2020-10".
func (d DatePrefix) Stamp() string {
	switch {
	case d.Year == 0:
		return ""
	case d.Month == 0:
		return fmt.Sprintf("%04d-", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d-", d.Year, d.Month)
	}
	return fmt.Sprintf("%04d-%02d-%02d-", d.Year, d.Month, d.Day)
}

// Match reports whether the record path p lies directly in postDir and its
// file name starts with the prefix's stamp. Both checks compare whole path
// segments; a substring elsewhere in the path never matches.
func (d DatePrefix) Match(postDir, p string) bool {
	dir, file := path.Split(p)
	return dir == postDir+"/" && strings.HasPrefix(file, d.Stamp())
}

func (d DatePrefix) String() string {
	return strings.TrimSuffix(d.Stamp(), "-")
}

// Years returns the distinct years of the given posts' dates, oldest first.
func Years(posts []*Record) []DatePrefix {
	return distinct(posts, func(t time.Time) DatePrefix {
		return DatePrefix{Year: t.Year()}
	})
}

// Months returns the distinct (year, month) pairs of the posts' dates.
func Months(posts []*Record) []DatePrefix {
	return distinct(posts, func(t time.Time) DatePrefix {
		return DatePrefix{Year: t.Year(), Month: int(t.Month())}
	})
}

// Days returns the distinct (year, month, day) triples of the posts' dates.
func Days(posts []*Record) []DatePrefix {
	return distinct(posts, func(t time.Time) DatePrefix {
		return DatePrefix{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
	})
}

func distinct(posts []*Record, key func(time.Time) DatePrefix) []DatePrefix {
	seen := make(map[DatePrefix]struct{})
	var out []DatePrefix
	for _, p := range posts {
		k := key(p.Meta.Date)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b DatePrefix) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Month, b.Month), cmp.Compare(a.Day, b.Day))
	})
	return out
}
