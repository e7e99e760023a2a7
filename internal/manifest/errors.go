package manifest

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when a manifest source does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config path doesn't exist: %s", e.Path)
}

// UnsupportedFormatError is returned when no codec handles a file extension.
type UnsupportedFormatError struct {
	Format string
	Path   string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("manifest format not supported: %q", e.Format)
	}
	return fmt.Sprintf("manifest format not supported: %q (%s)", e.Format, e.Path)
}

// WriteError is returned when a manifest, cache or state file cannot be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write manifest %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ParseError wraps a codec failure with the file it came from.
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s manifest %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrFormatChange is returned by SaveAs when the target is the manifest's own
// source path but the extension selects a different format.
var ErrFormatChange = errors.New("cannot save the manifest at its original location and also change its format")

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsUnsupportedFormat checks if an error is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var e *UnsupportedFormatError
	return errors.As(err, &e)
}

// IsWriteError checks if an error is a WriteError.
func IsWriteError(err error) bool {
	var e *WriteError
	return errors.As(err, &e)
}
