package checklist

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher kicks a Resolver when the checklist file changes on disk, so the
// displayed current step refreshes ahead of the next interval check.
// Editors commonly replace the file (write to temp, rename over), so the
// watch is on the containing directory and events are matched by name.
type Watcher struct {
	resolver *Resolver
	watcher  *fsnotify.Watcher
	path     string

	// OnChange, when set, is called after the resolver is invalidated.
	OnChange func()
}

// NewWatcher creates a watcher for the resolver's checklist file.
func NewWatcher(resolver *Resolver) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}

	dir := filepath.Dir(resolver.path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		resolver: resolver,
		watcher:  fw,
		path:     filepath.Clean(resolver.path),
	}, nil
}

// Run consumes watch events until the context is cancelled. Watch errors
// are dropped: the resolver's interval polling still picks up changes, so
// losing the watcher only costs latency.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.resolver.Invalidate()
			if w.OnChange != nil {
				w.OnChange()
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
