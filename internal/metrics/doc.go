// Package metrics exposes Prometheus collectors for bootstrap timing,
// manifest cache efficiency, provider hooks and the HTTP surface of serve.
package metrics
