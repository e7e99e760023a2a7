package app

import "errors"

var (
	// ErrAlreadyInitialized is returned by Bootstrap when the application
	// left the Uninitialized state.
	ErrAlreadyInitialized = errors.New("application cannot be bootstrapped twice")

	// ErrMissingRootPath is returned when neither the caller nor APP_PATH
	// names a root path.
	ErrMissingRootPath = errors.New("root path is not set")

	// ErrMissingStorageDirectory is returned when no storage directory is
	// registered and APP_STORAGE does not point at one.
	ErrMissingStorageDirectory = errors.New("storage directory is not set")

	// ErrContainerNotReady is returned by container accessors before the
	// container was built.
	ErrContainerNotReady = errors.New("container is not built yet, bootstrap the application first")
)

// IsAlreadyInitialized reports whether err is ErrAlreadyInitialized.
func IsAlreadyInitialized(err error) bool {
	return errors.Is(err, ErrAlreadyInitialized)
}

// IsContainerNotReady reports whether err is ErrContainerNotReady.
func IsContainerNotReady(err error) bool {
	return errors.Is(err, ErrContainerNotReady)
}
