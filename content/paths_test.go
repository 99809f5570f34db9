package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostSlug(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"posts/2020-01-05-hello", "hello"},
		{"posts/2020-01-05-hello-world", "hello-world"},
		{"my-posts/2020-01-05-a-b-c", "a-b-c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PostSlug(tt.path), tt.path)
	}
}

func TestPostPath(t *testing.T) {
	d := time.Date(2020, 3, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "posts/2020-03-07-hello", PostPath("posts", d, "hello"))
	assert.Equal(t, "pages/about", PagePath("pages", "about"))
}

func TestDatePrefixStamp(t *testing.T) {
	assert.Equal(t, "", DatePrefix{}.Stamp())
	assert.Equal(t, "2020-", DatePrefix{Year: 2020}.Stamp())
	assert.Equal(t, "2020-01-", DatePrefix{Year: 2020, Month: 1}.Stamp())
	assert.Equal(t, "2020-01-05-", DatePrefix{Year: 2020, Month: 1, Day: 5}.Stamp())
	assert.Equal(t, "2020-01", DatePrefix{Year: 2020, Month: 1}.String())
}

func TestDatePrefixMatchesWholeSegments(t *testing.T) {
	jan := DatePrefix{Year: 2020, Month: 1}
	assert.True(t, jan.Match("posts", "posts/2020-01-05-hello"))
	assert.False(t, jan.Match("posts", "posts/2020-10-05-hello"))

	// Substring matching used to accept these.
	assert.False(t, jan.Match("posts", "archive/posts/2020-01-05-hello"))
	assert.False(t, jan.Match("posts", "posts/old/2020-01-05-hello"))
	assert.False(t, DatePrefix{}.Match("posts", "pages/old-posts/about"))

	year := DatePrefix{Year: 2020}
	assert.True(t, year.Match("posts", "posts/2020-12-31-x"))
	assert.False(t, year.Match("posts", "posts/20201-01-01-x"))

	day := DatePrefix{Year: 2020, Month: 1, Day: 1}
	assert.False(t, day.Match("posts", "posts/2020-01-10-x"))
	assert.True(t, day.Match("posts", "posts/2020-01-01-x"))
}

func TestDatePrefixValid(t *testing.T) {
	assert.True(t, DatePrefix{}.Valid())
	assert.True(t, DatePrefix{Year: 2020}.Valid())
	assert.True(t, DatePrefix{Year: 2020, Month: 2, Day: 29}.Valid())
	assert.False(t, DatePrefix{Year: 2021, Month: 2, Day: 29}.Valid())
	assert.False(t, DatePrefix{Year: 2020, Month: 13}.Valid())
	assert.False(t, DatePrefix{Year: 2020, Day: 3}.Valid())
	assert.False(t, DatePrefix{Year: 0, Month: 1}.Valid())
}

func TestArchiveKeysOnlyPresentDates(t *testing.T) {
	posts := []*Record{
		{Meta: Meta{Date: time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)}},
		{Meta: Meta{Date: time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)}},
		{Meta: Meta{Date: time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)}},
		{Meta: Meta{Date: time.Date(2020, 1, 9, 0, 0, 0, 0, time.UTC)}},
	}

	assert.Equal(t, []DatePrefix{{Year: 2020}}, Years(posts))
	assert.Equal(t, []DatePrefix{{Year: 2020, Month: 1}, {Year: 2020, Month: 3}}, Months(posts))
	assert.Equal(t, []DatePrefix{
		{Year: 2020, Month: 1, Day: 5},
		{Year: 2020, Month: 1, Day: 9},
		{Year: 2020, Month: 3, Day: 2},
	}, Days(posts))
}
