package ledger

// Outcome is the result of processing a withdrawal.
type Outcome int

const (
	// Applied means the balance was debited.
	Applied Outcome = iota
	// InsufficientFunds means the balance was lower than the requested amount
	// and nothing was debited.
	InsufficientFunds
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case InsufficientFunds:
		return "insufficient_funds"
	default:
		return "unknown"
	}
}

// WithdrawResult describes a processed withdrawal.
type WithdrawResult struct {
	Outcome Outcome
	// Amount is the requested amount.
	Amount int
	// Balance is the new balance if the withdrawal was applied, otherwise the
	// unchanged balance that was observed.
	Balance int
}
