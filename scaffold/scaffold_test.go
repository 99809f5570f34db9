package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsoleter/plume/content"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Héllo World!", "hello-world"},
		{"Hello, World", "hello-world"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"snake_case/and-dashes", "snake-case-and-dashes"},
		{"Straße in Łódź", "strasse-in-lodz"},
		{"Æsir & Þór", "aesir-thor"},
		{"crème brûlée", "creme-brulee"},
		{"日本語", ""},
		{"Go 1.22 released", "go-1-22-released"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func fixedAuthor(t *testing.T) (*Author, string) {
	t.Helper()
	root := t.TempDir()
	now := time.Date(2024, 3, 9, 15, 4, 5, 0, time.Local)
	return &Author{Root: root, Now: func() time.Time { return now }}, root
}

func TestNewPost(t *testing.T) {
	a, root := fixedAuthor(t)

	file, err := a.NewPost("Héllo World!")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "posts", "2024-03-09-hello-world.md"), file)

	src, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(src), "title: ")
	assert.Contains(t, string(src), "\ndate: 2024-03-09\nsummary: \ntags: []\npublished: false\n\n")
}

func TestNewPostUsesToday(t *testing.T) {
	root := t.TempDir()
	a := &Author{Root: root}

	file, err := a.NewPost("Héllo World!")
	require.NoError(t, err)
	today := time.Now().Format(content.DateStampLayout)
	assert.Equal(t, today+"-hello-world.md", filepath.Base(file))
}

func TestNewPostIsLoadable(t *testing.T) {
	a, root := fixedAuthor(t)
	_, err := a.NewPost("Title: with a colon")
	require.NoError(t, err)
	_, err = a.NewPage("About me")
	require.NoError(t, err)

	s := content.NewStore(content.Options{Root: root})
	require.NoError(t, s.Load())

	post, err := s.Get("posts/2024-03-09-title:-with-a-colon")
	require.NoError(t, err)
	assert.Equal(t, "Title: with a colon", post.Meta.Title)
	assert.False(t, post.Meta.Published)
	assert.Empty(t, post.Meta.Tags)

	page, err := s.Get("pages/about-me")
	require.NoError(t, err)
	assert.Equal(t, "About me", page.Meta.Title)
	assert.Equal(t, content.KindPage, page.Kind)
}

func TestNewPage(t *testing.T) {
	a, root := fixedAuthor(t)

	file, err := a.NewPage("About Me")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "pages", "about-me.md"), file)

	src, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "title: About Me\ndate: 2024-03-09\nsummary: \n\n", string(src))
}

func TestNewRefusesToOverwrite(t *testing.T) {
	a, _ := fixedAuthor(t)

	file, err := a.NewPage("About")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, []byte("title: Mine\n"), 0o644))

	_, err = a.NewPage("About")
	require.ErrorIs(t, err, ErrExists)

	src, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "title: Mine\n", string(src))
}

func TestNewEmptySlug(t *testing.T) {
	a, _ := fixedAuthor(t)
	_, err := a.NewPost("!!!")
	require.ErrorIs(t, err, ErrEmptySlug)
}

func TestEditMissingEditor(t *testing.T) {
	a, _ := fixedAuthor(t)
	a.Editor = "plume-no-such-editor --wait"

	file, err := a.NewPost("draft")
	require.NoError(t, err)

	err = a.Edit(context.Background(), file)
	require.ErrorIs(t, err, ErrEditorNotFound)
	assert.Contains(t, err.Error(), "plume-no-such-editor")

	// The file survives the failed launch.
	_, err = os.Stat(file)
	require.NoError(t, err)
}

func TestEditRunsEditor(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	a, root := fixedAuthor(t)
	marker := filepath.Join(root, "opened")
	script := filepath.Join(root, "editor.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$1\" > "+marker+"\n"), 0o755))
	a.Editor = script

	file, err := a.NewPost("draft")
	require.NoError(t, err)
	require.NoError(t, a.Edit(context.Background(), file))

	got, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, file+"\n", string(got))
}
