// Package manifest loads configuration sources into stores.
//
// A source is a single file whose extension selects the codec: js (the
// native form, evaluated with goja), json, yaml/yml, ini, toml and hcl.
// Parsed sources can be compiled into a JSON cache keyed by the md5 of the
// source path; the cache is used while it is newer than the source, or
// unconditionally when mtime checking is off. Debug mode never touches it.
//
// Config directories are expanded with Expand, a pure mapping from relative
// file paths to dotted keys, and loaded with LoadDir.
package manifest
