package plume

import (
	"context"
	"fmt"
	"time"

	"github.com/radovskyb/watcher"
)

// Watch polls the content directory every interval and reloads the content
// as soon as a file changes. It blocks until ctx is cancelled.
func (a *App) Watch(ctx context.Context, interval time.Duration) error {
	w := watcher.New()
	w.SetMaxEvents(1)

	if err := w.AddRecursive(a.Config.ContentDir); err != nil {
		return fmt.Errorf("plume: watch %s: %w", a.Config.ContentDir, err)
	}

	go func() {
		for {
			select {
			case ev := <-w.Event:
				a.logger.Debug("content changed", "path", ev.Path, "op", ev.Op.String())
				if err := a.refresh(); err != nil {
					a.logger.Error("reload failed", "err", err)
				}
			case err := <-w.Error:
				a.logger.Error("watcher", "err", err)
			case <-w.Closed:
				return
			}
		}
	}()

	// Close is a no-op until Start is running.
	go func() {
		w.Wait()
		<-ctx.Done()
		w.Close()
	}()

	a.logger.Info("watching content", "dir", a.Config.ContentDir, "interval", interval)
	if err := w.Start(interval); err != nil {
		return fmt.Errorf("plume: watch: %w", err)
	}
	return nil
}
