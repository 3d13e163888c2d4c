package reminder

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go-approvals/internal/config"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const reloadDebounce = 500 * time.Millisecond

// PolicyWatcher reloads the policy file into the engine when it changes.
// The parent directory is watched so editors that replace the file are seen.
type PolicyWatcher struct {
	path     string
	engine   *Engine
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger
}

func NewPolicyWatcher(path string, engine *Engine, logger *zap.Logger) (*PolicyWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve policy path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", abs, err)
	}

	return &PolicyWatcher{
		path:     abs,
		engine:   engine,
		watcher:  watcher,
		debounce: reloadDebounce,
		logger:   logger.Named("policy"),
	}, nil
}

// Run blocks until ctx is cancelled. An invalid file is logged and the
// current policy stays in place.
func (w *PolicyWatcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("policy watcher error", zap.Error(err))
		}
	}
}

func (w *PolicyWatcher) reload() {
	policy, err := LoadPolicy(w.path)
	if err != nil {
		w.logger.Error("policy reload failed, keeping current policy", zap.Error(err))
		return
	}
	if err := w.engine.SetPolicy(policy); err != nil {
		w.logger.Error("policy rejected", zap.Error(err))
		return
	}
	w.logger.Info("reminder policy reloaded",
		zap.Duration("escalate_after", policy.EscalateAfter),
		zap.Duration("default_interval", policy.DefaultInterval),
	)
}

// RegisterPolicyWatcher hot-reloads REMINDER_POLICY_FILE for the lifetime of
// the application. Without a policy file it does nothing.
func RegisterPolicyWatcher(lc fx.Lifecycle, cfg *config.Config, engine *Engine, logger *zap.Logger) error {
	if cfg.ReminderPolicyFile == "" {
		return nil
	}
	w, err := NewPolicyWatcher(cfg.ReminderPolicyFile, engine, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				w.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
	return nil
}
