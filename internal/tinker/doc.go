// Package tinker provides an interactive shell for inspecting a bootstrapped
// application: its configuration, path and URL registries, providers and
// container entries.
//
//	soma » config mail.driver
//	smtp
//	soma » get mailer
//	*mail.Mailer
//	{ ... }
package tinker
