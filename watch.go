package replay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// watcher feeds filesystem change notifications into the index.
// Events are handled one at a time on a single goroutine.
type watcher struct {
	fsw    *fsnotify.Watcher
	index  *Index
	logger *slog.Logger
	done   chan struct{}
}

func startWatcher(ctx context.Context, dir string, idx *Index, logger *slog.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &watcher{
		fsw:    fsw,
		index:  idx,
		logger: logger,
		done:   make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

func (w *watcher) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// Removals are ignored; see Index.
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if err := w.index.Refresh(ctx, ev.Name); err != nil {
				w.logger.Warn("index refresh failed",
					slog.String("file", ev.Name),
					slog.String("op", ev.Op.String()),
					slog.String("error", err.Error()),
				)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

// Close stops the watcher and waits for the event loop to exit.
func (w *watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
