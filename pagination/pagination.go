// Package pagination slices ordered listings into fixed-size pages and computes
// the navigation data templates need to render page controls.
package pagination

import (
	"errors"
	"iter"
	"slices"
)

// ErrOutOfRange is returned when the requested page does not exist. Handlers
// treat it as a not-found condition.
var ErrOutOfRange = errors.New("pagination: page out of range")

// Default window used by Links.
const (
	DefaultLeftEdge     = 2
	DefaultLeftCurrent  = 2
	DefaultRightCurrent = 5
	DefaultRightEdge    = 2
)

// Pagination is the state of one page of a listing.
type Pagination struct {
	Page       int
	PerPage    int
	TotalCount int
}

// New validates page against the number of pages for totalCount items.
// An empty listing has zero pages, so every request for it fails.
func New(page, perPage, totalCount int) (*Pagination, error) {
	if perPage < 1 {
		return nil, errors.New("pagination: perPage must be positive")
	}
	p := &Pagination{Page: page, PerPage: perPage, TotalCount: totalCount}
	if page < 1 || page > p.Pages() {
		return nil, ErrOutOfRange
	}
	return p, nil
}

// Pages is ceil(TotalCount / PerPage).
func (p *Pagination) Pages() int {
	return (p.TotalCount + p.PerPage - 1) / p.PerPage
}

// Multiple reports whether there is more than one page; templates use it to
// decide whether to render controls at all.
func (p *Pagination) Multiple() bool {
	return p.Pages() > 1
}

func (p *Pagination) HasPrev() bool { return p.Page > 1 }

func (p *Pagination) HasNext() bool { return p.Page < p.Pages() }

func (p *Pagination) Prev() int { return p.Page - 1 }

func (p *Pagination) Next() int { return p.Page + 1 }

// IterPages yields the page numbers to show in pagination controls. A page is
// shown when it lies within leftEdge of the start, within rightEdge of the end,
// or between Page-leftCurrent and Page+rightCurrent inclusive. A single 0 is
// yielded wherever shown numbers skip at least one page.
func (p *Pagination) IterPages(leftEdge, leftCurrent, rightCurrent, rightEdge int) iter.Seq[int] {
	pages := p.Pages()
	return func(yield func(int) bool) {
		last := 0
		for num := 1; num <= pages; num++ {
			if num <= leftEdge ||
				(num >= p.Page-leftCurrent && num <= p.Page+rightCurrent) ||
				num > pages-rightEdge {
				if last+1 != num {
					if !yield(0) {
						return
					}
				}
				if !yield(num) {
					return
				}
				last = num
			}
		}
	}
}

// Links collects IterPages with the default window.
func (p *Pagination) Links() []int {
	return slices.Collect(p.IterPages(DefaultLeftEdge, DefaultLeftCurrent, DefaultRightCurrent, DefaultRightEdge))
}

// Slice returns the window of items that belongs on p's page.
func Slice[T any](p *Pagination, items []T) []T {
	start := (p.Page - 1) * p.PerPage
	if start >= len(items) {
		return nil
	}
	end := min(p.Page*p.PerPage, len(items))
	return items[start:end]
}
