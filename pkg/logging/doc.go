// Package logging provides the subsystem-tagged structured logger used across soma.
//
// It is a thin layer over Go's log/slog. Every entry carries a subsystem
// attribute ("Bootstrap", "Manifest", "Providers", ...) so output from the
// orchestrator can be filtered by the part of the lifecycle that produced it.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Bootstrap", "Loaded configuration from %s", path)
//	logging.Debug("Manifest", "Cache hit for %s", source)
//	logging.Warn("Providers", "Provider %s has no install hook", id)
//	logging.Error("Bootstrap", err, "Failed to build container")
//
// Calls made before InitForCLI are dropped, except warnings and errors which
// are written to stderr so early bootstrap failures stay visible.
package logging
