// Package syncs provides synchronization primitives and utilities.
//
// This package implements concurrency control mechanisms layered on the
// standard library's [sync] package, for use by components that share state
// across goroutines.
package syncs
