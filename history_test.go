package plume

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/obsoleter/plume/freeze"
)

func setupTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to open history: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestOpenHistory(t *testing.T) {
	h := setupTestHistory(t)
	if h.db == nil {
		t.Fatal("db should not be nil")
	}
	// Opening an existing database keeps the schema.
	if err := h.ensureSchema(); err != nil {
		t.Fatalf("ensureSchema on existing db: %v", err)
	}
}

func TestRecordAndList(t *testing.T) {
	h := setupTestHistory(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	res := &freeze.Result{
		Started:  start,
		Finished: start.Add(1500 * time.Millisecond),
		Files: []freeze.File{
			{Path: "index.html", URL: "/", Size: 100, SHA256: "aa"},
			{Path: "static/style.css", Size: 20, SHA256: "bb"},
		},
	}
	id, err := h.Record(ctx, "build", start, res, nil)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if id == "" {
		t.Fatal("Record returned an empty id")
	}

	failed, err := h.Record(ctx, "build", start.Add(time.Hour), nil, errors.New("freeze: unexpected status"))
	if err != nil {
		t.Fatalf("Record failed build: %v", err)
	}

	builds, err := h.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(builds) != 2 {
		t.Fatalf("got %d builds, want 2", len(builds))
	}
	if builds[0].ID != failed {
		t.Errorf("most recent build = %s, want %s", builds[0].ID, failed)
	}
	if builds[0].Err != "freeze: unexpected status" {
		t.Errorf("Err = %q", builds[0].Err)
	}

	b := builds[1]
	if b.ID != id {
		t.Errorf("ID = %s, want %s", b.ID, id)
	}
	if !b.Started.Equal(start) {
		t.Errorf("Started = %v, want %v", b.Started, start)
	}
	if b.Duration() != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", b.Duration())
	}
	if b.Files != 2 || b.Bytes != 120 {
		t.Errorf("Files, Bytes = %d, %d; want 2, 120", b.Files, b.Bytes)
	}
	if b.Output != "build" {
		t.Errorf("Output = %q", b.Output)
	}
}

func TestListLimit(t *testing.T) {
	h := setupTestHistory(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := h.Record(ctx, "build", start.Add(time.Duration(i)*time.Minute), &freeze.Result{}, nil); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}
	builds, err := h.List(ctx, 3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(builds) != 3 {
		t.Fatalf("got %d builds, want 3", len(builds))
	}
	if want := start.Add(4 * time.Minute); !builds[0].Started.Equal(want) {
		t.Errorf("first build started %v, want %v", builds[0].Started, want)
	}
}

func TestFiles(t *testing.T) {
	h := setupTestHistory(t)
	ctx := context.Background()
	res := &freeze.Result{Files: []freeze.File{
		{Path: "b/index.html", URL: "/b/", Size: 2, SHA256: "b"},
		{Path: "a/index.html", URL: "/a/", Size: 1, SHA256: "a"},
	}}
	id, err := h.Record(ctx, "build", time.Now(), res, nil)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	files, err := h.Files(ctx, id)
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0] != (freeze.File{Path: "a/index.html", URL: "/a/", Size: 1, SHA256: "a"}) {
		t.Errorf("files[0] = %+v", files[0])
	}

	if _, err := h.Files(ctx, "no-such-build"); !errors.Is(err, ErrBuildNotFound) {
		t.Errorf("Files(unknown) error = %v, want ErrBuildNotFound", err)
	}
}
