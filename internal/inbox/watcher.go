package inbox

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/tagnote/internal/storage"
)

// settleDelay batches bursts of events for a file still being written.
const settleDelay = 200 * time.Millisecond

// Watch drains the inbox once, then watches root for new or changed .md
// files and drains again after each burst of events, until ctx is cancelled.
// Only root itself is watched; rejected/ is never re-imported.
func Watch(ctx context.Context, c Creator, store storage.Provider, root string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}
	logger.Info("inbox: watching", slog.String("root", root))

	drain := func() {
		st, err := Drain(ctx, c, store, logger)
		if err != nil && ctx.Err() == nil {
			logger.Warn("inbox: drain failed", slog.String("error", err.Error()))
			return
		}
		if st.Imported+st.Rejected+st.Failed > 0 {
			logger.Debug("inbox: drained",
				slog.Int("imported", st.Imported),
				slog.Int("rejected", st.Rejected),
				slog.Int("failed", st.Failed))
		}
	}
	drain()

	var settle *time.Timer
	var settleCh <-chan time.Time
	schedule := func() {
		if settle == nil {
			settle = time.NewTimer(settleDelay)
			settleCh = settle.C
		} else {
			settle.Reset(settleDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			logger.Info("inbox: stopped")
			return nil

		case <-settleCh:
			drain()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".md") || filepath.Dir(ev.Name) != filepath.Clean(root) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
