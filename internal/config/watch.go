package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"storefront/internal/domain/models"
	"storefront/internal/utils"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// PromoWatcher reloads the promo table whenever the config file changes.
// The parent directory is watched because editors usually replace files by
// rename instead of writing them in place.
type PromoWatcher struct {
	path     string
	onChange func([]models.Promo)
	watcher  *fsnotify.Watcher
	debounce time.Duration

	stopOnce sync.Once
	done     chan struct{}
}

func NewPromoWatcher(path string, onChange func([]models.Promo)) (*PromoWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &PromoWatcher{
		path:     abs,
		onChange: onChange,
		watcher:  w,
		debounce: 200 * time.Millisecond,
		done:     make(chan struct{}),
	}, nil
}

// Start runs the event loop until ctx is cancelled or Stop is called.
func (pw *PromoWatcher) Start(ctx context.Context) {
	go pw.run(ctx)
}

func (pw *PromoWatcher) Stop() {
	pw.stopOnce.Do(func() {
		_ = pw.watcher.Close()
	})
	<-pw.done
}

func (pw *PromoWatcher) run(ctx context.Context) {
	defer close(pw.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			pw.stopOnce.Do(func() { _ = pw.watcher.Close() })
			return
		case ev, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != pw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(pw.debounce)
			} else {
				timer.Reset(pw.debounce)
			}
			fire = timer.C
		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			utils.L().Warn("config watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			pw.reload()
		}
	}
}

func (pw *PromoWatcher) reload() {
	promos, err := LoadPromos(pw.path)
	if err != nil {
		utils.L().Warn("promo reload failed", zap.String("path", pw.path), zap.Error(err))
		return
	}
	utils.L().Info("promo table reloaded", zap.String("path", pw.path), zap.Int("codes", len(promos)))
	pw.onChange(promos)
}
