package library

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/albertocavalcante/go-blendlaunch/internal/logging"
)

// DefaultDebounce is how long a Watcher waits for the library to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to the library folder structure.
//
// It watches the library root and every category folder. Installing,
// removing or renaming a build produces a burst of events; the Watcher waits
// until no event has arrived for Debounce and then calls OnChange once.
type Watcher struct {
	Root       string
	Categories []string
	// OnChange is called on the Run goroutine after each settled burst.
	OnChange func()
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Run watches until ctx is done. It returns nil on cancellation and an error
// only if the watch cannot be set up.
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.OrDiscard(w.Logger)
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.Root); err != nil {
		return err
	}
	for _, c := range w.Categories {
		dir := filepath.Join(w.Root, c)
		if !isDir(dir) {
			continue
		}
		if err := fw.Add(dir); err != nil {
			logger.Warn("cannot watch category", "dir", dir, "error", err)
		}
	}
	logger.Debug("watching library", "root", w.Root)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			// A category folder created after start must be watched too.
			if ev.Op.Has(fsnotify.Create) && filepath.Dir(ev.Name) == filepath.Clean(w.Root) &&
				slices.Contains(w.Categories, filepath.Base(ev.Name)) && isDir(ev.Name) {
				if err := fw.Add(ev.Name); err != nil {
					logger.Warn("cannot watch category", "dir", ev.Name, "error", err)
				}
			}
			logger.Debug("library event", "op", ev.Op.String(), "path", ev.Name)
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("library watch error", "error", err)

		case <-timer.C:
			if w.OnChange != nil {
				w.OnChange()
			}
		}
	}
}
