// Package metrics exposes Prometheus collectors fed by ledger events.
package metrics
