// Package publish ships a frozen site to where it is served from.
package publish

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
)

// Publisher uploads or commits the contents of a frozen output directory.
type Publisher interface {
	Publish(ctx context.Context, dir string) (Report, error)
}

// Report summarises a publish run.
type Report struct {
	Target   string // bucket URL or repository path
	Files    int
	Bytes    int64
	Revision string // commit hash for git, empty otherwise
}

// ErrNoOutput is returned when the output directory does not exist.
var ErrNoOutput = errors.New("publish: output directory missing, run build first")

// vcsDirs are never uploaded.
var vcsDirs = []string{".git", ".hg", ".svn"}

// walkFiles calls fn for every regular file under dir with its slash
// separated relative path.
func walkFiles(dir string, fn func(abs, rel string, info fs.FileInfo) error) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && errors.Is(err, fs.ErrNotExist) {
				return ErrNoOutput
			}
			return err
		}
		if d.IsDir() {
			if p != dir && slices.Contains(vcsDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		return fn(p, filepath.ToSlash(rel), info)
	})
}
