package pagination

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagesIsCeiling(t *testing.T) {
	for perPage := 1; perPage <= 7; perPage++ {
		for total := 1; total <= 50; total++ {
			p, err := New(1, perPage, total)
			require.NoError(t, err)
			want := total / perPage
			if total%perPage != 0 {
				want++
			}
			assert.Equal(t, want, p.Pages(), "total=%d perPage=%d", total, perPage)
		}
	}
}

func TestNewRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		page, perPage, total int
	}{
		{0, 15, 30},
		{-1, 15, 30},
		{3, 15, 30},
		{2, 15, 15},
		{1, 15, 0},
	}
	for _, tt := range tests {
		_, err := New(tt.page, tt.perPage, tt.total)
		assert.True(t, errors.Is(err, ErrOutOfRange), "New(%d, %d, %d) err = %v", tt.page, tt.perPage, tt.total, err)
	}
}

func TestEmptyListingHasNoPages(t *testing.T) {
	p := &Pagination{Page: 1, PerPage: 15, TotalCount: 0}
	assert.Equal(t, 0, p.Pages())

	_, err := New(1, 15, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestNewRejectsNonPositivePerPage(t *testing.T) {
	_, err := New(1, 0, 10)
	require.Error(t, err)
}

func TestSliceConcatenationReproducesInput(t *testing.T) {
	items := make([]int, 47)
	for i := range items {
		items[i] = i * 3
	}
	for perPage := 1; perPage <= 20; perPage++ {
		first, err := New(1, perPage, len(items))
		require.NoError(t, err)

		var joined []int
		for page := 1; page <= first.Pages(); page++ {
			p, err := New(page, perPage, len(items))
			require.NoError(t, err)
			window := Slice(p, items)
			assert.LessOrEqual(t, len(window), perPage)
			joined = append(joined, window...)
		}
		assert.Equal(t, items, joined, "perPage=%d", perPage)
	}
}

func TestPrevNext(t *testing.T) {
	p, err := New(1, 10, 25)
	require.NoError(t, err)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.True(t, p.Multiple())
	assert.Equal(t, 2, p.Next())

	p, err = New(3, 10, 25)
	require.NoError(t, err)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
	assert.Equal(t, 2, p.Prev())

	p, err = New(1, 10, 10)
	require.NoError(t, err)
	assert.False(t, p.Multiple())
}

func TestIterPagesWindow(t *testing.T) {
	p, err := New(10, 1, 20)
	require.NoError(t, err)

	got := slices.Collect(p.IterPages(2, 2, 5, 2))
	want := []int{1, 2, 0, 8, 9, 10, 11, 12, 13, 14, 15, 0, 19, 20}
	assert.Equal(t, want, got)
	assert.Equal(t, want, p.Links())
}

func TestIterPagesNoGaps(t *testing.T) {
	p, err := New(1, 15, 45)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, p.Links())
}

func TestIterPagesNearStart(t *testing.T) {
	p, err := New(1, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 0, 11, 12}, p.Links())
}

func TestIterPagesNearEnd(t *testing.T) {
	p, err := New(20, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0, 18, 19, 20}, p.Links())
}

func TestIterPagesStopsEarly(t *testing.T) {
	p, err := New(10, 1, 20)
	require.NoError(t, err)

	var got []int
	for n := range p.IterPages(2, 2, 5, 2) {
		got = append(got, n)
		if len(got) == 3 {
			break
		}
	}
	assert.Equal(t, []int{1, 2, 0}, got)
}
