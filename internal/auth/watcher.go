package auth

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 200 * time.Millisecond

// Watch reloads the tokens file whenever it changes until ctx is cancelled.
// The parent directory is watched so that editors which replace the file by
// rename are noticed too. onReload, if non-nil, is called after every
// successful reload.
func (r *Registry) Watch(ctx context.Context, path string, logger *slog.Logger, onReload func()) error {
	if err := r.LoadFile(path); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("tokens watcher: started", slog.String("path", abs))

	// Bursts of events (write + chmod, rename + create) collapse into one reload.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time
	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(reloadDelay)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(reloadDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("tokens watcher: stopped")
			return nil

		case <-reloadCh:
			reloadTimer, reloadCh = nil, nil
			if err := r.LoadFile(abs); err != nil {
				logger.Warn("tokens watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("tokens watcher: reloaded", slog.Int("tokens", r.Len()))
			if onReload != nil {
				onReload()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("tokens watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
