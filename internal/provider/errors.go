package provider

import (
	"errors"
	"fmt"
)

// Op is an install-track operation.
type Op string

const (
	OpInstall   Op = "install"
	OpRefresh   Op = "refresh"
	OpUninstall Op = "uninstall"
)

// HookError reports the provider whose hook failed.
type HookError struct {
	Op       Op
	Provider string
	Err      error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Provider, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// UnknownProviderError is returned when the catalog has no constructor for an identity.
type UnknownProviderError struct {
	ID string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown service provider %q", e.ID)
}

// UnknownCommandError is returned when the catalog has no command for an identity.
type UnknownCommandError struct {
	ID string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.ID)
}

// IsHookError checks if an error is a HookError.
func IsHookError(err error) bool {
	var e *HookError
	return errors.As(err, &e)
}

// IsUnknownProvider checks if an error is an UnknownProviderError.
func IsUnknownProvider(err error) bool {
	var e *UnknownProviderError
	return errors.As(err, &e)
}
