package watcher

import (
	"context"

	"soma/pkg/logging"
)

// Reloader is the part of the application a configuration reload needs.
type Reloader interface {
	ClearCache(key string) error
	LoadConfig(ctx context.Context, force bool) error
}

// Reload applies every change received on changes: the compiled
// configuration is dropped and the configuration reloaded from source. It
// returns when ctx is done or changes is closed. onReload, when set, is
// called after each attempt with its outcome.
func Reload(ctx context.Context, r Reloader, changes <-chan Change, onReload func(Change, error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			err := apply(ctx, r)
			if err != nil {
				logging.Error("Watcher", err, "Failed to reload configuration after %s of %s", change.Operation, change.Path)
			} else {
				logging.Info("Watcher", "Reloaded configuration after %s of %s", change.Operation, change.Path)
			}
			if onReload != nil {
				onReload(change, err)
			}
		}
	}
}

func apply(ctx context.Context, r Reloader) error {
	if err := r.ClearCache("config"); err != nil {
		return err
	}
	return r.LoadConfig(ctx, true)
}
