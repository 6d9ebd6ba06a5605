// Package ledger provides a single shared account balance that is safe for
// concurrent use.
//
// Reads and deposits are serialized by one mutex. Withdrawals additionally
// pass through an admission gate ([syncs.Gate]) layered on the same mutex, so
// at most one withdrawal is ever checking and debiting the balance.
//
// A withdrawal that exceeds the balance is not an error: it returns a
// [WithdrawResult] with the [InsufficientFunds] outcome and leaves the balance
// untouched.
package ledger
