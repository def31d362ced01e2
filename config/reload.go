package config

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader watches the config file and invokes a callback with the freshly
// loaded config on change. A cooldown suppresses editor write bursts.
type Reloader struct {
	path     string
	cooldown time.Duration
	watcher  *fsnotify.Watcher
	onReload func(AppConfig)
	onError  func(error)
	last     time.Time
}

// NewReloader creates a reloader for path. onReload receives every valid new
// config; onError (optional) receives load failures.
func NewReloader(path string, cooldown time.Duration, onReload func(AppConfig), onError func(error)) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if cooldown <= 0 {
		cooldown = 2 * time.Second
	}
	return &Reloader{
		path:     path,
		cooldown: cooldown,
		watcher:  watcher,
		onReload: onReload,
		onError:  onError,
	}, nil
}

// Start begins watching until the context is canceled.
func (r *Reloader) Start(ctx context.Context) error {
	if err := r.watcher.Add(r.path); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	go r.loop(ctx)
	return nil
}

// Close releases the underlying watcher.
func (r *Reloader) Close() error {
	return r.watcher.Close()
}

func (r *Reloader) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if time.Since(r.last) < r.cooldown {
				continue
			}
			r.last = time.Now()

			cfg, err := LoadWithEnvOverrides(r.path)
			if err != nil {
				if r.onError != nil {
					r.onError(err)
				}
				continue
			}
			if r.onReload != nil {
				r.onReload(cfg)
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			if r.onError != nil {
				r.onError(err)
			}
		}
	}
}
