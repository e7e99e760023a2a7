package app

import "sync"

var (
	currentMu sync.RWMutex
	current   *Application
)

// SetCurrent installs a as the process-wide application. Only the first call
// takes effect; it reports whether a was installed.
func SetCurrent(a *Application) bool {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current != nil {
		return false
	}
	current = a
	return true
}

// Current returns the process-wide application, or nil before SetCurrent.
func Current() *Application {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

func resetCurrent() {
	currentMu.Lock()
	current = nil
	currentMu.Unlock()
}
