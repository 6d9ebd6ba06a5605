package ledger

type (
	// Sent when the balance has been read.
	EventRead struct {
		Balance int
	}

	// Sent when a deposit has been applied.
	EventDeposited struct {
		Amount  int
		Balance int
	}

	// Sent when a withdrawal has been admitted through the gate, before the
	// balance is checked.
	EventWithdrawAdmitted struct {
		Amount int
	}

	// Sent when a withdrawal has been processed, whatever its outcome.
	EventWithdrawn struct {
		Result WithdrawResult
	}

	// Sent just before a withdrawal releases the gate.
	EventWithdrawReleased struct {
		Amount int
	}
)
