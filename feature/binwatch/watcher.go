package binwatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"stremio-service/core/process"
	"stremio-service/core/supervisor"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Target is the supervisor view the watcher needs.
type Target interface {
	Phase() supervisor.Phase
	Restart(ctx context.Context) (supervisor.ServerInfo, error)
}

// Notifier is told after a restart was attempted.
type Notifier interface {
	Trigger()
}

// Watcher restarts the running server when one of its binaries changes on disk.
type Watcher struct {
	dir      string
	files    map[string]struct{}
	debounce time.Duration
	target   Target
	notify   Notifier
	logger   *zap.Logger
}

// New creates a watcher for the files of cfg.
func New(cfg process.ServerConfig, debounce time.Duration, target Target, notify Notifier, logger *zap.Logger) *Watcher {
	files := make(map[string]struct{}, 4)
	for _, p := range cfg.Paths() {
		files[filepath.Clean(p)] = struct{}{}
	}
	return &Watcher{
		dir:      cfg.Dir(),
		files:    files,
		debounce: debounce,
		target:   target,
		notify:   notify,
		logger:   logger.With(zap.String("component", "binwatch")),
	}
}

// Run watches the binaries directory until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	// Installers usually replace files by rename, so the directory is watched instead of the files.
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching server binaries", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))

	return w.loop(ctx, fw.Events, fw.Errors)
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		changed = make(map[string]struct{})
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Server binary changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			changed[filepath.Base(event.Name)] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			files := make([]string, 0, len(changed))
			for f := range changed {
				files = append(files, f)
			}
			clear(changed)
			w.apply(ctx, files)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	_, ok := w.files[filepath.Clean(event.Name)]
	return ok
}

func (w *Watcher) apply(ctx context.Context, files []string) {
	if w.target.Phase() != supervisor.PhaseRunning {
		w.logger.Info("Server binaries changed while server is not running", zap.Strings("files", files))
		return
	}

	w.logger.Info("Server binaries changed, restarting server", zap.Strings("files", files))
	if _, err := w.target.Restart(ctx); err != nil {
		w.logger.Error("Restart after binary change failed", zap.Error(err))
	}
	w.notify.Trigger()
}
