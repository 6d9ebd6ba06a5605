package ledger_test

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MacroPower/acctsim/pkg/bankerrors"
	"github.com/MacroPower/acctsim/pkg/ledger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		opts    []ledger.Option
		want    int
		wantErr error
	}{
		"defaults": {
			want: 0,
		},
		"initial balance": {
			opts: []ledger.Option{ledger.WithInitialBalance(100)},
			want: 100,
		},
		"negative initial balance": {
			opts:    []ledger.Option{ledger.WithInitialBalance(-1)},
			wantErr: bankerrors.ErrInit,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			l, err := ledger.New(tc.opts...)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, l)

				return
			}

			require.NoError(t, err)

			got, err := l.Read()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, l.Initial())
		})
	}
}

func TestDeposit(t *testing.T) {
	t.Parallel()

	l, err := ledger.New()
	require.NoError(t, err)

	got, err := l.Deposit(50)
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	got, err = l.Deposit(25)
	require.NoError(t, err)
	assert.Equal(t, 75, got)

	_, err = l.Deposit(0)
	require.ErrorIs(t, err, bankerrors.ErrInvalidAmount)

	_, err = l.Deposit(-10)
	require.ErrorIs(t, err, bankerrors.ErrInvalidAmount)

	got, err = l.Read()
	require.NoError(t, err)
	assert.Equal(t, 75, got)
}

func TestWithdraw(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		initial int
		amount  int
		want    ledger.WithdrawResult
		wantErr error
	}{
		"covered": {
			initial: 100,
			amount:  30,
			want:    ledger.WithdrawResult{Outcome: ledger.Applied, Amount: 30, Balance: 70},
		},
		"exact balance": {
			initial: 30,
			amount:  30,
			want:    ledger.WithdrawResult{Outcome: ledger.Applied, Amount: 30, Balance: 0},
		},
		"insufficient funds": {
			initial: 10,
			amount:  30,
			want:    ledger.WithdrawResult{Outcome: ledger.InsufficientFunds, Amount: 30, Balance: 10},
		},
		"empty ledger": {
			amount: 1,
			want:   ledger.WithdrawResult{Outcome: ledger.InsufficientFunds, Amount: 1, Balance: 0},
		},
		"zero amount": {
			initial: 10,
			amount:  0,
			wantErr: bankerrors.ErrInvalidAmount,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			l, err := ledger.New(ledger.WithInitialBalance(tc.initial))
			require.NoError(t, err)

			got, err := l.Withdraw(tc.amount)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			balance, err := l.Read()
			require.NoError(t, err)
			assert.Equal(t, tc.want.Balance, balance)
		})
	}
}

func TestDepositThenWithdraw(t *testing.T) {
	t.Parallel()

	t.Run("withdrawal after deposit", func(t *testing.T) {
		t.Parallel()

		l, err := ledger.New()
		require.NoError(t, err)

		_, err = l.Deposit(50)
		require.NoError(t, err)

		res, err := l.Withdraw(30)
		require.NoError(t, err)
		assert.Equal(t, ledger.WithdrawResult{Outcome: ledger.Applied, Amount: 30, Balance: 20}, res)
	})

	t.Run("withdrawal before deposit", func(t *testing.T) {
		t.Parallel()

		l, err := ledger.New()
		require.NoError(t, err)

		res, err := l.Withdraw(30)
		require.NoError(t, err)
		assert.Equal(t, ledger.WithdrawResult{Outcome: ledger.InsufficientFunds, Amount: 30, Balance: 0}, res)

		got, err := l.Deposit(50)
		require.NoError(t, err)
		assert.Equal(t, 50, got)
	})

	t.Run("concurrent", func(t *testing.T) {
		t.Parallel()

		l, err := ledger.New()
		require.NoError(t, err)

		start := make(chan struct{})

		var (
			wg  sync.WaitGroup
			res ledger.WithdrawResult
		)

		wg.Add(2)

		go func() {
			defer wg.Done()

			<-start

			_, err := l.Deposit(50)
			assert.NoError(t, err)
		}()

		go func() {
			defer wg.Done()

			<-start

			var err error
			res, err = l.Withdraw(30)
			assert.NoError(t, err)
		}()

		close(start)
		wg.Wait()

		final, err := l.Read()
		require.NoError(t, err)

		switch res.Outcome {
		case ledger.Applied:
			assert.Equal(t, 20, res.Balance)
			assert.Equal(t, 20, final)
		case ledger.InsufficientFunds:
			assert.Equal(t, 0, res.Balance)
			assert.Equal(t, 50, final)
		}
	})
}

func TestConcurrentWithdrawalsAreSerialized(t *testing.T) {
	t.Parallel()

	l, err := ledger.New(ledger.WithInitialBalance(100))
	require.NoError(t, err)

	start := make(chan struct{})
	results := make(chan ledger.WithdrawResult, 2)

	var wg sync.WaitGroup

	wg.Add(2)

	for range 2 {
		go func() {
			defer wg.Done()

			<-start

			res, err := l.Withdraw(60)
			assert.NoError(t, err)

			results <- res
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	got := []ledger.WithdrawResult{}
	for res := range results {
		got = append(got, res)
	}

	assert.ElementsMatch(t, []ledger.WithdrawResult{
		{Outcome: ledger.Applied, Amount: 60, Balance: 40},
		{Outcome: ledger.InsufficientFunds, Amount: 60, Balance: 40},
	}, got)

	final, err := l.Read()
	require.NoError(t, err)
	assert.Equal(t, 40, final)
}

func TestWithdrawalsTerminate(t *testing.T) {
	t.Parallel()

	l, err := ledger.New(ledger.WithInitialBalance(50))
	require.NoError(t, err)

	done := make(chan ledger.Outcome, 2)

	for range 2 {
		go func() {
			res, err := l.Withdraw(40)
			assert.NoError(t, err)

			done <- res.Outcome
		}()
	}

	outcomes := []ledger.Outcome{}

	for range 2 {
		select {
		case o := <-done:
			outcomes = append(outcomes, o)
		case <-time.After(5 * time.Second):
			t.Fatal("withdrawal did not complete")
		}
	}

	assert.ElementsMatch(t, []ledger.Outcome{ledger.Applied, ledger.InsufficientFunds}, outcomes)
}

func TestConcurrentOperations(t *testing.T) {
	t.Parallel()

	var (
		inside    atomic.Int32
		overlap   atomic.Bool
		negative  atomic.Bool
		deposited atomic.Int64
		withdrawn atomic.Int64
	)

	l, err := ledger.New(ledger.WithSubscriber(func(evt any) {
		switch e := evt.(type) {
		case ledger.EventWithdrawAdmitted:
			if inside.Add(1) != 1 {
				overlap.Store(true)
			}
		case ledger.EventWithdrawReleased:
			inside.Add(-1)
		case ledger.EventWithdrawn:
			if e.Result.Balance < 0 {
				negative.Store(true)
			}
		}
	}))
	require.NoError(t, err)

	const (
		workers = 20
		ops     = 200
	)

	var wg sync.WaitGroup

	wg.Add(workers)

	for w := range workers {
		go func() {
			defer wg.Done()

			for i := range ops {
				amount := (w*ops+i)%100 + 1

				switch i % 3 {
				case 0:
					_, err := l.Read()
					assert.NoError(t, err)
				case 1:
					_, err := l.Deposit(amount)
					assert.NoError(t, err)
					deposited.Add(int64(amount))
				case 2:
					res, err := l.Withdraw(amount)
					assert.NoError(t, err)
					if res.Outcome == ledger.Applied {
						withdrawn.Add(int64(amount))
					}
				}
			}
		}()
	}

	wg.Wait()

	final, err := l.Read()
	require.NoError(t, err)

	assert.Equal(t, deposited.Load()-withdrawn.Load(), int64(final))
	assert.GreaterOrEqual(t, final, 0)
	assert.False(t, overlap.Load(), "withdrawal critical sections overlapped")
	assert.False(t, negative.Load(), "balance went negative")
}

func TestEvents(t *testing.T) {
	t.Parallel()

	events := []any{}

	l, err := ledger.New(ledger.WithInitialBalance(10))
	require.NoError(t, err)

	l.Subscribe(func(evt any) {
		events = append(events, evt)
	})

	_, err = l.Deposit(5)
	require.NoError(t, err)
	_, err = l.Read()
	require.NoError(t, err)
	_, err = l.Withdraw(20)
	require.NoError(t, err)

	assert.Equal(t, []any{
		ledger.EventDeposited{Amount: 5, Balance: 15},
		ledger.EventRead{Balance: 15},
		ledger.EventWithdrawAdmitted{Amount: 20},
		ledger.EventWithdrawn{Result: ledger.WithdrawResult{
			Outcome: ledger.InsufficientFunds,
			Amount:  20,
			Balance: 15,
		}},
		ledger.EventWithdrawReleased{Amount: 20},
	}, events)
}

func TestClose(t *testing.T) {
	t.Parallel()

	l, err := ledger.New(ledger.WithInitialBalance(10))
	require.NoError(t, err)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	_, err = l.Read()
	require.ErrorIs(t, err, bankerrors.ErrLedgerClosed)

	_, err = l.Deposit(1)
	require.ErrorIs(t, err, bankerrors.ErrLedgerClosed)

	_, err = l.Withdraw(1)
	require.ErrorIs(t, err, bankerrors.ErrLedgerClosed)
}

func TestCloseDuringWithdrawal(t *testing.T) {
	t.Parallel()

	var l *ledger.Ledger

	closeErr := make(chan error, 1)

	l, err := ledger.New(
		ledger.WithInitialBalance(10),
		ledger.WithSubscriber(func(evt any) {
			if _, ok := evt.(ledger.EventWithdrawAdmitted); ok {
				// Close from another goroutine blocks on the ledger lock until
				// the withdrawal is done, then succeeds.
				go func() { closeErr <- l.Close() }()
			}
		}),
	)
	require.NoError(t, err)

	res, err := l.Withdraw(5)
	require.NoError(t, err)
	assert.Equal(t, ledger.Applied, res.Outcome)

	require.NoError(t, <-closeErr)

	_, err = l.Read()
	require.ErrorIs(t, err, bankerrors.ErrLedgerClosed)
}

func TestWithdrawAfterSubscriberPanic(t *testing.T) {
	t.Parallel()

	var failed atomic.Bool

	l, err := ledger.New(
		ledger.WithInitialBalance(100),
		ledger.WithSubscriber(func(evt any) {
			if _, ok := evt.(ledger.EventWithdrawn); ok && failed.CompareAndSwap(false, true) {
				panic("subscriber failed")
			}
		}),
	)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "subscriber failed", func() {
		_, _ = l.Withdraw(10) //nolint:errcheck // Panics.
	})

	done := make(chan ledger.WithdrawResult, 1)

	go func() {
		res, err := l.Withdraw(10)
		assert.NoError(t, err)

		done <- res
	}()

	select {
	case res := <-done:
		assert.Equal(t, ledger.Applied, res.Outcome)
		assert.Equal(t, 80, res.Balance)
	case <-time.After(5 * time.Second):
		t.Fatal("withdrawal blocked after a subscriber panicked")
	}

	require.NoError(t, l.Close())
}

func TestDepositOverflow(t *testing.T) {
	t.Parallel()

	l, err := ledger.New(ledger.WithInitialBalance(math.MaxInt - 10))
	require.NoError(t, err)

	got, err := l.Deposit(10)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = l.Deposit(1)
	require.ErrorIs(t, err, bankerrors.ErrBalanceOverflow)

	got, err = l.Read()
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "applied", ledger.Applied.String())
	assert.Equal(t, "insufficient_funds", ledger.InsufficientFunds.String())
	assert.Equal(t, "unknown", ledger.Outcome(99).String())
}
