// Package holder simulates an account holder issuing a bounded sequence of
// randomly chosen operations against a shared account.
package holder
