// Package server exposes a ready application over HTTP.
//
// The server publishes the public storage and extension directories as
// static files, the Prometheus registry of the application on /metrics and a
// small health document on /healthz:
//
//	GET /healthz        {"id": "...", "stage": "production", "state": "ready"}
//	GET /metrics        Prometheus exposition format
//	GET /storage/*      files below paths.storage.public
//	GET /extensions/*   files below paths.extensions.public
//
// Panics raised while handling a request are reported through the
// application error handler and answered with 500.
package server
