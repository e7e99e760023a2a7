package provider

import (
	"context"
	"fmt"

	"soma/internal/container"
	"soma/pkg/logging"
)

// Target is a provider selected for an install-track operation.
type Target struct {
	ID       string
	Provider Provider
}

// BatchResult lists what a batch did.
type BatchResult struct {
	Op      Op
	Ran     []string
	Skipped []string
}

// Observer is told about each provider before its hook runs.
type Observer func(op Op, id string)

// RunBatch runs op over targets in order.
//
// Install runs on tracked providers not yet flagged installed and sets the
// flag; uninstall runs on flagged providers and clears it; refresh runs on
// every flagged provider. A provider without the hook for op still has its
// flag updated. The state is saved after every successful hook, so a failed
// batch keeps the progress made before the failure. The first failure stops
// the batch and is returned as a *HookError.
func RunBatch(ctx context.Context, op Op, targets []Target, state *State, c *container.Container, observe Observer) (*BatchResult, error) {
	result := &BatchResult{Op: op}

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !Tracked(t.Provider) || !applies(op, state.Installed(t.ID)) {
			result.Skipped = append(result.Skipped, t.ID)
			continue
		}

		if observe != nil {
			observe(op, t.ID)
		}
		logging.Info("Providers", "Running %s on %s", op, t.ID)

		if err := runHook(op, t.Provider, c); err != nil {
			logging.Error("Providers", err, "%s failed for %s", op, t.ID)
			return result, &HookError{Op: op, Provider: t.ID, Err: err}
		}

		switch op {
		case OpInstall:
			state.Set(t.ID, true)
		case OpUninstall:
			state.Set(t.ID, false)
		}
		result.Ran = append(result.Ran, t.ID)

		if op != OpRefresh {
			if err := state.Save(); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

func applies(op Op, installed bool) bool {
	switch op {
	case OpInstall:
		return !installed
	case OpRefresh, OpUninstall:
		return installed
	}
	return false
}

func runHook(op Op, p Provider, c *container.Container) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch op {
	case OpInstall:
		if h, ok := p.(Installer); ok {
			return h.Install(c)
		}
	case OpRefresh:
		if h, ok := p.(Refresher); ok {
			return h.Refresh(c)
		}
	case OpUninstall:
		if h, ok := p.(Uninstaller); ok {
			return h.Uninstall(c)
		}
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
	return nil
}
