// Package cli holds the pieces shared by the soma commands: output flags,
// coloured status lines and a spinner for long running steps.
package cli
