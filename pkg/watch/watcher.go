package watch

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/art2ascii/artview/pkg/log"
)

// watchLoop subscribes to the frame file's directory and feeds change
// events to OnFileChange. The directory is watched rather than the file
// so rename-over writes are seen.
func (c *Coordinator) watchLoop(ctx context.Context) {
	defer c.wg.Done()

	path := c.source.Path()
	dir, name := filepath.Dir(path), filepath.Base(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.logger.Error("failed to create file watcher", log.Err(err))
		return
	}
	defer watcher.Close()

	b := newBackoff(c.cfg.RetryInitial, c.cfg.RetryMax)
	for {
		err := watcher.Add(dir)
		if err == nil {
			break
		}
		c.logger.Warn("cannot watch frame directory, retrying",
			log.String("dir", dir),
			log.Err(err),
		)
		if !b.wait(ctx) {
			return
		}
	}
	c.logger.Info("watching frame file", log.String("path", path))

	_ = c.OnFileChange(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			c.logger.Debug("frame file event", log.String("op", event.Op.String()))
			c.scheduleReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.logger.Error("file watcher error", log.Err(err))
		}
	}
}

// scheduleReload debounces bursts of events into one OnFileChange call.
func (c *Coordinator) scheduleReload(ctx context.Context) {
	if c.cfg.DebounceDelay == 0 {
		_ = c.OnFileChange(ctx)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = c.clock.AfterFunc(c.cfg.DebounceDelay, func() {
		_ = c.OnFileChange(ctx)
	})
}
