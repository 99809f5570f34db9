package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Git commits the output directory, which must be the root of a git
// repository, and optionally pushes it.
type Git struct {
	Name    string // commit author
	Email   string
	Message string // default "Publish site"
	Remote  string // pushed when set, e.g. "origin"

	Now    func() time.Time
	Logger *slog.Logger
}

func (g *Git) setDefaults() {
	if g.Name == "" {
		g.Name = "plume"
	}
	if g.Email == "" {
		g.Email = "plume@localhost"
	}
	if g.Message == "" {
		g.Message = "Publish site"
	}
	if g.Now == nil {
		g.Now = time.Now
	}
	if g.Logger == nil {
		g.Logger = slog.Default()
	}
}

// Publish stages every change in dir, including deletions, and commits it.
// A clean worktree is not an error: the report carries the current HEAD and
// zero files.
func (g *Git) Publish(ctx context.Context, dir string) (Report, error) {
	g.setDefaults()
	rep := Report{Target: dir}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		return rep, fmt.Errorf("publish: git open %s: %w", dir, err)
	}
	w, err := repo.Worktree()
	if err != nil {
		return rep, fmt.Errorf("publish: git worktree: %w", err)
	}
	status, err := w.Status()
	if err != nil {
		return rep, fmt.Errorf("publish: git status: %w", err)
	}

	if status.IsClean() {
		if head, err := repo.Head(); err == nil {
			rep.Revision = head.Hash().String()
		}
		g.Logger.Info("nothing to publish", "repo", dir)
		return rep, nil
	}

	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return rep, fmt.Errorf("publish: git add: %w", err)
	}
	hash, err := w.Commit(g.Message, &git.CommitOptions{
		All: true,
		Author: &object.Signature{
			Name:  g.Name,
			Email: g.Email,
			When:  g.Now(),
		},
	})
	if err != nil {
		return rep, fmt.Errorf("publish: git commit: %w", err)
	}
	rep.Files = len(status)
	rep.Revision = hash.String()
	g.Logger.Info("committed", "repo", dir, "revision", rep.Revision, "files", rep.Files)

	if g.Remote != "" {
		err := repo.PushContext(ctx, &git.PushOptions{RemoteName: g.Remote})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return rep, fmt.Errorf("publish: git push %s: %w", g.Remote, err)
		}
		g.Logger.Info("pushed", "remote", g.Remote)
	}
	return rep, nil
}
