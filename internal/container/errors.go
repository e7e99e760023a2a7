package container

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyBuilt is returned by a second call to Builder.Build.
var ErrAlreadyBuilt = errors.New("container has already been built")

// NotFoundError is returned when no definition or alias matches an id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no definition found for %q", e.ID)
}

// CycleError is returned when resolving an id requires itself.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency: %s", strings.Join(e.Chain, " -> "))
}

// ResolveError wraps a factory or extension failure.
type ResolveError struct {
	ID  string
	Err error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve %q: %v", e.ID, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsCycle checks if an error is a CycleError.
func IsCycle(err error) bool {
	var e *CycleError
	return errors.As(err, &e)
}
