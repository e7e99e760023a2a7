package app

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"

	"soma/pkg/logging"
)

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler reports errors and recovered panics. On the command line
// reports are written as plain text; for other request kinds they only go to
// the log. Debug mode adds the error chain and stack traces.
//
// An unregistered handler still reports errors but lets panics propagate.
type ErrorHandler struct {
	mu         sync.Mutex
	out        io.Writer
	debug      bool
	kind       RequestKind
	registered bool
}

// NewErrorHandler creates an unregistered handler.
func NewErrorHandler(out io.Writer, debug bool, kind RequestKind) *ErrorHandler {
	return &ErrorHandler{out: out, debug: debug, kind: kind}
}

// Configure updates the debug flag and request kind.
func (h *ErrorHandler) Configure(debug bool, kind RequestKind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.debug = debug
	if kind != "" {
		h.kind = kind
	}
}

// Register enables panic recovery.
func (h *ErrorHandler) Register() {
	h.mu.Lock()
	h.registered = true
	h.mu.Unlock()
}

// Unregister disables panic recovery.
func (h *ErrorHandler) Unregister() {
	h.mu.Lock()
	h.registered = false
	h.mu.Unlock()
}

// Registered reports whether panics are recovered.
func (h *ErrorHandler) Registered() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registered
}

// Recover turns a panic into an error stored in *errp and reports it. It
// must be deferred directly:
//
//	defer app.ErrorHandler().Recover(&err)
func (h *ErrorHandler) Recover(errp *error) {
	if !h.Registered() {
		return
	}
	r := recover()
	if r == nil {
		return
	}

	perr := &PanicError{Value: r, Stack: debug.Stack()}
	if errp != nil {
		*errp = perr
	}
	h.Report(perr)
}

// Report writes err in the format suited to the request kind.
func (h *ErrorHandler) Report(err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	logging.Error("Error", err, "Unhandled error")
	if h.kind != RequestCLI || h.out == nil {
		return
	}

	fmt.Fprintf(h.out, "Error: %v\n", err)
	if !h.debug {
		return
	}

	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(h.out, "  caused by: %v\n", cause)
	}
	var perr *PanicError
	if errors.As(err, &perr) {
		fmt.Fprintf(h.out, "\n%s\n", perr.Stack)
	}
}
