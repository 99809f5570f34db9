package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putObject struct {
	body        string
	contentType string
}

type fakeBucket struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]putObject
	err     error
}

func (b *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if b.err != nil {
		return nil, b.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bucket = aws.ToString(in.Bucket)
	b.objects[aws.ToString(in.Key)] = putObject{body: string(data), contentType: aws.ToString(in.ContentType)}
	return &s3.PutObjectOutput{}, nil
}

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	}
}

func TestS3Publish(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"index.html":       "<html>",
		"recent.atom":      "<feed/>",
		"static/style.css": "body{}",
		".git/HEAD":        "ref",
	})

	bucket := &fakeBucket{objects: map[string]putObject{}}
	rep, err := NewS3(bucket, "site", "blog", nil).Publish(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "s3://site/blog", rep.Target)
	assert.Equal(t, 3, rep.Files)
	assert.Equal(t, int64(len("<html>")+len("<feed/>")+len("body{}")), rep.Bytes)
	assert.Equal(t, "site", bucket.bucket)

	require.Len(t, bucket.objects, 3)
	assert.Equal(t, putObject{"<html>", "text/html; charset=utf-8"}, bucket.objects["blog/index.html"])
	assert.Equal(t, "application/atom+xml; charset=utf-8", bucket.objects["blog/recent.atom"].contentType)
	assert.Equal(t, "body{}", bucket.objects["blog/static/style.css"].body)
	assert.NotContains(t, bucket.objects, "blog/.git/HEAD")
}

func TestS3PublishError(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"index.html": "x"})

	bucket := &fakeBucket{objects: map[string]putObject{}, err: assert.AnError}
	_, err := NewS3(bucket, "site", "", nil).Publish(context.Background(), dir)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "upload index.html")
}

func TestS3PublishMissingOutput(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]putObject{}}
	_, err := NewS3(bucket, "site", "", nil).Publish(context.Background(), filepath.Join(t.TempDir(), "out"))
	require.ErrorIs(t, err, ErrNoOutput)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", ContentType("a/index.html"))
	assert.Equal(t, "text/css; charset=utf-8", ContentType("pygments.css"))
	assert.Equal(t, "application/xml; charset=utf-8", ContentType("sitemap.xml"))
	assert.Equal(t, "application/octet-stream", ContentType("LICENSE"))
}

func TestGitPublish(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	when := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	pub := &Git{Name: "Site Bot", Email: "bot@example.com", Now: func() time.Time { return when }}

	writeTree(t, dir, map[string]string{"index.html": "v1", "about/index.html": "about"})
	rep, err := pub.Publish(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Files)
	require.NotEmpty(t, rep.Revision)

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, rep.Revision, head.Hash().String())
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Publish site", commit.Message)
	assert.Equal(t, "Site Bot", commit.Author.Name)
	assert.True(t, commit.Author.When.Equal(when))

	// Nothing changed: no new commit.
	again, err := pub.Publish(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Files)
	assert.Equal(t, rep.Revision, again.Revision)

	// Modifications and deletions are both committed.
	writeTree(t, dir, map[string]string{"index.html": "v2"})
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "about")))
	third, err := pub.Publish(context.Background(), dir)
	require.NoError(t, err)
	assert.NotEqual(t, rep.Revision, third.Revision)

	w, err := repo.Worktree()
	require.NoError(t, err)
	status, err := w.Status()
	require.NoError(t, err)
	assert.True(t, status.IsClean(), status.String())

	tip, err := repo.Head()
	require.NoError(t, err)
	tipCommit, err := repo.CommitObject(tip.Hash())
	require.NoError(t, err)
	_, err = tipCommit.File("about/index.html")
	require.ErrorIs(t, err, object.ErrFileNotFound)
}

func TestGitPublishNotARepository(t *testing.T) {
	_, err := (&Git{}).Publish(context.Background(), t.TempDir())
	require.ErrorIs(t, err, git.ErrRepositoryNotExists)
}
