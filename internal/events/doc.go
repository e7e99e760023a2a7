// Package events provides the named-signal dispatcher that drives the
// application lifecycle.
//
// Signals are delivered synchronously on the emitting goroutine. The
// bootstrap sequence relies on this: a listener on app.extensions can still
// register providers and they are loaded before app.ready fires.
//
//	d := events.NewDispatcher()
//	d.Listen("cache.*.clear", func(e events.Event) error {
//		logging.Info("Cache", "Cleared %s", e.Payload["path"])
//		return nil
//	})
//	_ = d.Dispatch(events.CacheClear("manifests"), map[string]any{"path": dir})
package events
