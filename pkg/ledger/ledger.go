package ledger

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/MacroPower/acctsim/pkg/bankerrors"
	"github.com/MacroPower/acctsim/pkg/syncs"
)

// Ledger holds a shared balance. Create instances with [New].
type Ledger struct {
	gate    syncs.Admitter
	subs    []func(any)
	initial int
	balance int
	mu      sync.Mutex
	closed  bool
}

// New creates a new [Ledger]. It returns an error wrapping
// [bankerrors.ErrInit] if the options describe an unusable ledger.
func New(opts ...Option) (*Ledger, error) {
	l := &Ledger{
		subs: []func(any){},
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.initial < 0 {
		return nil, fmt.Errorf("%w: negative initial balance %d", bankerrors.ErrInit, l.initial)
	}

	l.balance = l.initial
	l.gate = syncs.NewGate(&l.mu)

	slog.Debug("ledger ready", slog.Int("balance", l.balance))

	return l, nil
}

type Option func(*Ledger)

// WithInitialBalance sets the balance the ledger starts with.
func WithInitialBalance(balance int) Option {
	return func(l *Ledger) {
		l.initial = balance
	}
}

// WithSubscriber registers f as in [Ledger.Subscribe].
func WithSubscriber(f func(any)) Option {
	return func(l *Ledger) {
		l.subs = append(l.subs, f)
	}
}

// Subscribe registers f to receive ledger events. Events are delivered
// synchronously while the ledger's lock is held, so f must not call back into
// the ledger. Subscribe must not be called concurrently with other methods.
func (l *Ledger) Subscribe(f func(any)) {
	l.subs = append(l.subs, f)
}

func (l *Ledger) broadcastEvent(evt any) {
	for _, sub := range l.subs {
		sub(evt)
	}
}

// Initial returns the balance the ledger was created with.
func (l *Ledger) Initial() int {
	return l.initial
}

// Read returns the current balance.
func (l *Ledger) Read() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, bankerrors.ErrLedgerClosed
	}

	l.broadcastEvent(EventRead{Balance: l.balance})

	return l.balance, nil
}

// Deposit adds amount to the balance and returns the new balance. A deposit
// that would overflow the balance is rejected and leaves it unchanged.
func (l *Ledger) Deposit(amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: deposit %d", bankerrors.ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, bankerrors.ErrLedgerClosed
	}

	if l.balance > math.MaxInt-amount {
		return 0, fmt.Errorf("%w: deposit %d onto %d", bankerrors.ErrBalanceOverflow, amount, l.balance)
	}

	l.balance += amount
	l.broadcastEvent(EventDeposited{Amount: amount, Balance: l.balance})

	return l.balance, nil
}

// Withdraw debits amount from the balance if the balance covers it. Only one
// withdrawal is processed at a time; others wait for the gate to be released.
func (l *Ledger) Withdraw(amount int) (WithdrawResult, error) {
	if amount <= 0 {
		return WithdrawResult{}, fmt.Errorf("%w: withdraw %d", bankerrors.ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return WithdrawResult{}, bankerrors.ErrLedgerClosed
	}

	l.gate.Enter()
	defer l.gate.Leave()

	l.broadcastEvent(EventWithdrawAdmitted{Amount: amount})

	res := WithdrawResult{
		Outcome: InsufficientFunds,
		Amount:  amount,
		Balance: l.balance,
	}
	if l.balance >= amount {
		l.balance -= amount
		res.Outcome = Applied
		res.Balance = l.balance
	}

	l.broadcastEvent(EventWithdrawn{Result: res})
	l.broadcastEvent(EventWithdrawReleased{Amount: amount})

	return res, nil
}

// Close releases the ledger. Every later operation returns
// [bankerrors.ErrLedgerClosed]. Close waits for an in-flight operation to
// finish. Closing twice is a no-op.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true

	slog.Debug("ledger closed", slog.Int("balance", l.balance))

	return nil
}
