package main

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCmdMissingEditor(t *testing.T) {
	root := t.TempDir()
	var stdout, stderr bytes.Buffer
	g := &Globals{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stdout: &stdout,
		Stderr: &stderr,
	}
	cli := &CLI{
		Config:     filepath.Join(root, "plume.toml"),
		ContentDir: filepath.Join(root, "content"),
	}

	cmd := &PageCmd{Name: "About Me", Editor: "plume-missing-editor"}
	require.NoError(t, cmd.Run(g, cli))

	file := strings.TrimSpace(stdout.String())
	assert.Equal(t, filepath.Join(root, "content", "pages", "about-me.md"), file)
	assert.FileExists(t, file)

	assert.Contains(t, stderr.String(), "cannot open file in editor")
	assert.Equal(t, 1, strings.Count(stderr.String(), "plume-missing-editor"), stderr.String())
}
