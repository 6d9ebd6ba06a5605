package holder

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/MacroPower/acctsim/pkg/bankerrors"
	"github.com/MacroPower/acctsim/pkg/ledger"
)

const (
	DefaultIterations = 5
	DefaultPause      = time.Second
	DefaultMaxAmount  = 100
)

// Account is the shared account a [Holder] operates on.
// See [ledger.Ledger] for an implementation.
type Account interface {
	Read() (int, error)
	Deposit(amount int) (int, error)
	Withdraw(amount int) (ledger.WithdrawResult, error)
}

// Source supplies random choices. [math/rand/v2.Rand] satisfies it.
type Source interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// Stats tallies the operations a [Holder] issued.
type Stats struct {
	Reads       int
	Deposits    int
	Deposited   int
	Withdrawals int
	Withdrawn   int
	Declined    int
}

// Operations returns the number of operations attempted.
func (s Stats) Operations() int {
	return s.Reads + s.Deposits + s.Withdrawals + s.Declined
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Reads += o.Reads
	s.Deposits += o.Deposits
	s.Deposited += o.Deposited
	s.Withdrawals += o.Withdrawals
	s.Withdrawn += o.Withdrawn
	s.Declined += o.Declined
}

// Holder issues operations against an [Account]. Create instances with [New].
type Holder struct {
	Account    Account
	Source     Source
	Clock      clock.Clock
	Logger     *slog.Logger
	stats      Stats
	ID         int
	Iterations int
	MaxAmount  int
	Pause      time.Duration
}

// New creates a new [Holder] identified by id.
func New(id int, account Account, src Source, opts ...Option) *Holder {
	h := &Holder{
		ID:         id,
		Account:    account,
		Source:     src,
		Clock:      clock.New(),
		Logger:     slog.Default(),
		Iterations: DefaultIterations,
		MaxAmount:  DefaultMaxAmount,
		Pause:      DefaultPause,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

type Option func(*Holder)

func WithIterations(n int) Option {
	return func(h *Holder) {
		h.Iterations = n
	}
}

func WithPause(d time.Duration) Option {
	return func(h *Holder) {
		h.Pause = d
	}
}

// WithMaxAmount bounds amounts to [1, n]. n must be at least 1.
func WithMaxAmount(n int) Option {
	return func(h *Holder) {
		h.MaxAmount = n
	}
}

func WithClock(c clock.Clock) Option {
	return func(h *Holder) {
		h.Clock = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Holder) {
		h.Logger = l
	}
}

// Run issues h.Iterations operations, pausing between each. Withdrawals that
// are declined for insufficient funds count as issued operations. Run returns
// an error if the account rejects an operation, or wrapping
// [bankerrors.ErrInvalidAmount] if h.MaxAmount is less than 1.
func (h *Holder) Run() error {
	if h.MaxAmount < 1 {
		return fmt.Errorf("holder %d: %w: max amount %d", h.ID, bankerrors.ErrInvalidAmount, h.MaxAmount)
	}

	logger := h.Logger.With(slog.Int("holder", h.ID))

	logger.Debug("starting", slog.Int("iterations", h.Iterations))

	for range h.Iterations {
		action := Action(h.Source.IntN(numActions))
		amount := h.Source.IntN(h.MaxAmount) + 1

		err := h.do(logger, action, amount)
		if err != nil {
			return fmt.Errorf("holder %d: %s: %w", h.ID, action, err)
		}

		h.Clock.Sleep(h.Pause)
	}

	logger.Debug("finished")

	return nil
}

// Stats returns the tallies collected by [Holder.Run]. It must not be called
// while Run is in progress.
func (h *Holder) Stats() Stats {
	return h.stats
}

func (h *Holder) do(logger *slog.Logger, action Action, amount int) error {
	switch action {
	case ActionRead:
		balance, err := h.Account.Read()
		if err != nil {
			return err
		}

		h.stats.Reads++

		logger.Info("read balance", slog.Int("balance", balance))

	case ActionDeposit:
		balance, err := h.Account.Deposit(amount)
		if err != nil {
			return err
		}

		h.stats.Deposits++
		h.stats.Deposited += amount

		logger.Info("deposit",
			slog.Int("amount", amount),
			slog.Int("balance", balance),
		)

	case ActionWithdraw:
		res, err := h.Account.Withdraw(amount)
		if err != nil {
			return err
		}

		if res.Outcome == ledger.Applied {
			h.stats.Withdrawals++
			h.stats.Withdrawn += amount

			logger.Info("withdraw",
				slog.Int("amount", amount),
				slog.Int("balance", res.Balance),
			)

			return nil
		}

		h.stats.Declined++

		logger.Info("withdraw declined",
			slog.Int("amount", amount),
			slog.Int("balance", res.Balance),
			slog.String("outcome", res.Outcome.String()),
		)

	default:
		return fmt.Errorf("unknown action %d", action)
	}

	return nil
}
