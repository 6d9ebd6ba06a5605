// Package bankerrors provides error definitions for the account simulation.
//
// Errors are sentinels intended to be wrapped with [fmt.Errorf] and checked
// with [errors.Is]. An insufficient balance is not an error; see
// [github.com/MacroPower/acctsim/pkg/ledger.InsufficientFunds].
package bankerrors
