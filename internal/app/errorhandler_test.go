package app

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recovered(h *ErrorHandler, f func()) (err error) {
	defer h.Recover(&err)
	f()
	return nil
}

func TestErrorHandler_RecoversPanics(t *testing.T) {
	var out bytes.Buffer
	h := NewErrorHandler(&out, false, RequestCLI)
	h.Register()

	err := recovered(h, func() { panic("boom") })

	var perr *PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "boom", perr.Value)
	assert.NotEmpty(t, perr.Stack)
	assert.Equal(t, "Error: panic: boom\n", out.String())
}

func TestErrorHandler_Unregistered(t *testing.T) {
	h := NewErrorHandler(&bytes.Buffer{}, false, RequestCLI)
	assert.Panics(t, func() {
		_ = recovered(h, func() { panic("boom") })
	})
}

func TestErrorHandler_Report(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("failed to write cache: %w", cause)

	tests := []struct {
		name     string
		debug    bool
		kind     RequestKind
		contains []string
		empty    bool
	}{
		{name: "cli", kind: RequestCLI, contains: []string{"Error: failed to write cache: disk full\n"}},
		{name: "cli debug", debug: true, kind: RequestCLI, contains: []string{"Error: failed", "caused by: disk full"}},
		{name: "http logs only", kind: RequestHTTP, empty: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			h := NewErrorHandler(&out, false, RequestCLI)
			h.Configure(tt.debug, tt.kind)
			h.Report(err)

			if tt.empty {
				assert.Empty(t, out.String())
				return
			}
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
			if !tt.debug {
				assert.NotContains(t, out.String(), "caused by")
			}
		})
	}
}
