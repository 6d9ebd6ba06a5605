package holder

// Action is an operation a [Holder] can issue.
type Action int

const (
	ActionRead Action = iota
	ActionDeposit
	ActionWithdraw

	numActions = 3
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionDeposit:
		return "deposit"
	case ActionWithdraw:
		return "withdraw"
	default:
		return "unknown"
	}
}
