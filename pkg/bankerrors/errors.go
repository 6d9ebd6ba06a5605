package bankerrors

import (
	"errors"
	"fmt"
)

var (
	// ErrInit indicates shared resources could not be initialized.
	ErrInit = errors.New("initialize resources")

	// ErrInvalidAmount indicates a non-positive deposit or withdrawal amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrLedgerClosed indicates an operation on a ledger that was closed.
	ErrLedgerClosed = errors.New("ledger closed")

	// ErrBalanceOverflow indicates a deposit would exceed the largest
	// representable balance.
	ErrBalanceOverflow = errors.New("balance overflow")

	// ErrInvalidConfig indicates invalid simulation configuration.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrReadConfig indicates the configuration file could not be read.
	ErrReadConfig = fmt.Errorf("read: %w", ErrInvalidConfig)

	// ErrInconsistent indicates the final balance does not match the sum of
	// applied operations.
	ErrInconsistent = errors.New("inconsistent balance")
)
