// Package sim coordinates an account simulation: it creates the shared
// ledger, runs one goroutine per account holder, waits for all of them, and
// only then releases the ledger.
package sim
