// Package store implements the dot-path key-value container that backs the
// application's configuration, path and URL registries.
//
// A nested store splits "mail.driver" into {"mail": {"driver": ...}} while a
// flat store keeps the key verbatim. Reads never mutate.
package store
