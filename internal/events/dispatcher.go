package events

import (
	"fmt"
	"sync"
	"time"

	"soma/pkg/logging"

	"github.com/bmatcuk/doublestar/v4"
)

type subscription struct {
	id       uint64
	pattern  string
	listener Listener
}

// Dispatcher delivers events synchronously: Dispatch returns only after every
// matching listener ran, in registration order.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	fired  map[string]int
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{fired: make(map[string]int)}
}

// Listen registers listener for every event whose name matches pattern.
// Patterns use glob syntax, so "cache.*.clear" matches every cache clear and
// "*" matches everything. The returned function removes the listener.
func (d *Dispatcher) Listen(pattern string, listener Listener) func() {
	if !doublestar.ValidatePattern(pattern) {
		logging.Warn("Events", "Listener pattern %q is not a valid glob, matching literally", pattern)
	}

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.subs = append(d.subs, subscription{id: id, pattern: pattern, listener: listener})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, s := range d.subs {
			if s.id == id {
				d.subs = append(d.subs[:i], d.subs[i+1:]...)
				return
			}
		}
	}
}

// HasListeners reports whether any listener matches name.
func (d *Dispatcher) HasListeners(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.subs {
		if matches(s.pattern, name) {
			return true
		}
	}
	return false
}

// Dispatch emits name to every matching listener. The first listener error,
// or a recovered panic, stops delivery and is returned.
func (d *Dispatcher) Dispatch(name string, payload map[string]any) error {
	d.mu.Lock()
	d.fired[name]++
	subs := make([]subscription, 0, len(d.subs))
	for _, s := range d.subs {
		if matches(s.pattern, name) {
			subs = append(subs, s)
		}
	}
	d.mu.Unlock()

	logging.Debug("Events", "Dispatching %s to %d listeners", name, len(subs))

	event := Event{Name: name, Payload: payload, Time: time.Now()}
	for _, s := range subs {
		if err := invoke(s.listener, event); err != nil {
			return fmt.Errorf("listener for %s failed: %w", name, err)
		}
	}
	return nil
}

// Fired returns how many times name has been dispatched.
func (d *Dispatcher) Fired(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fired[name]
}

func invoke(l Listener, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in listener: %v", r)
			logging.Error("Events", err, "Listener for %s panicked", event.Name)
		}
	}()
	return l(event)
}

func matches(pattern, name string) bool {
	if pattern == name {
		return true
	}
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
