package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MacroPower/acctsim/pkg/bankerrors"
	"github.com/MacroPower/acctsim/pkg/holder"
	"github.com/MacroPower/acctsim/pkg/ledger"
	"github.com/MacroPower/acctsim/pkg/tracing"
)

// SourceFactory returns the random source for the holder with the given id.
type SourceFactory func(id int) holder.Source

// Simulation runs account holders against one shared ledger. Create instances
// with [New].
type Simulation struct {
	clock     clock.Clock
	logger    *slog.Logger
	tracer    tracing.Tracer
	newSource SourceFactory
	subs      []func(any)
	cfg       Config
}

// New creates a new [Simulation]. It returns an error wrapping
// [bankerrors.ErrInvalidConfig] if cfg is invalid.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:    cfg,
		clock:  clock.New(),
		logger: slog.Default(),
		subs:   []func(any){},
	}
	s.newSource = s.defaultSource
	for _, opt := range opts {
		opt(s)
	}

	if s.tracer == nil {
		s.tracer = tracing.NewLoggingTracer(s.logger, s.clock)
	}

	return s, nil
}

type Option func(*Simulation)

// WithClock sets the clock used for pauses and timing.
func WithClock(c clock.Clock) Option {
	return func(s *Simulation) {
		s.clock = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		s.logger = l
	}
}

// WithTracer sets the tracer used to time the run and each holder. By
// default spans are logged at debug level.
func WithTracer(t tracing.Tracer) Option {
	return func(s *Simulation) {
		s.tracer = t
	}
}

// WithSubscriber registers f to receive ledger events. See
// [ledger.Ledger.Subscribe].
func WithSubscriber(f func(any)) Option {
	return func(s *Simulation) {
		s.subs = append(s.subs, f)
	}
}

// WithSourceFactory overrides how holders get their random source.
func WithSourceFactory(f SourceFactory) Option {
	return func(s *Simulation) {
		s.newSource = f
	}
}

func (s *Simulation) defaultSource(id int) holder.Source {
	if s.cfg.Seed != 0 {
		return rand.New(rand.NewPCG(s.cfg.Seed, uint64(id))) //nolint:gosec // Not used for security.
	}

	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // Not used for security.
}

// Run creates the ledger, runs every holder concurrently and waits for all of
// them to finish before closing the ledger. No holder is started if the
// ledger cannot be created.
func (s *Simulation) Run() (*Report, error) {
	runID, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("%w: generate run id: %w", bankerrors.ErrInit, err)
	}

	logger := s.logger.With(slog.String("run", runID.String()))

	ledgerOpts := []ledger.Option{ledger.WithInitialBalance(s.cfg.InitialBalance)}
	for _, sub := range s.subs {
		ledgerOpts = append(ledgerOpts, ledger.WithSubscriber(sub))
	}

	l, err := ledger.New(ledgerOpts...)
	if err != nil {
		return nil, fmt.Errorf("create ledger: %w", err)
	}

	holders := make([]*holder.Holder, s.cfg.Holders)
	for i := range holders {
		id := i + 1
		holders[i] = holder.New(id, l, s.newSource(id),
			holder.WithIterations(s.cfg.Iterations),
			holder.WithPause(s.cfg.Pause),
			holder.WithMaxAmount(s.cfg.MaxAmount),
			holder.WithClock(s.clock),
			holder.WithLogger(logger),
		)
	}

	logger.Info("starting simulation",
		slog.Int("holders", s.cfg.Holders),
		slog.Int("iterations", s.cfg.Iterations),
		slog.Int("balance", s.cfg.InitialBalance),
	)

	start := s.clock.Now()

	runSpan := s.tracer.StartSpan("simulation")
	runSpan.SetBaggageItem("run", runID.String())

	var g errgroup.Group
	for _, h := range holders {
		g.Go(func() error {
			span := s.tracer.StartSpan("holder")
			span.SetBaggageItem("holder", h.ID)
			defer span.Finish()

			return h.Run()
		})
	}

	runErr := g.Wait()

	runSpan.Finish()

	final, err := l.Read()
	if err != nil {
		return nil, errors.Join(runErr, fmt.Errorf("read final balance: %w", err))
	}

	err = l.Close()
	if err != nil {
		return nil, errors.Join(runErr, fmt.Errorf("close ledger: %w", err))
	}

	if runErr != nil {
		return nil, runErr
	}

	report := &Report{
		RunID:   runID.String(),
		Initial: l.Initial(),
		Final:   final,
		Elapsed: s.clock.Since(start),
		Holders: make([]HolderReport, 0, len(holders)),
	}
	for _, h := range holders {
		stats := h.Stats()
		report.Totals.Add(stats)
		report.Holders = append(report.Holders, HolderReport{ID: h.ID, Stats: stats})
	}

	logger.Info("simulation complete",
		slog.Int("balance", report.Final),
		slog.Int("operations", report.Totals.Operations()),
		slog.Duration("elapsed", report.Elapsed),
	)

	err = report.Verify()
	if err != nil {
		return report, err
	}

	return report, nil
}

// HolderReport is the outcome of one holder's run.
type HolderReport struct {
	Stats holder.Stats
	ID    int
}

// Report summarizes a completed simulation.
type Report struct {
	RunID   string
	Holders []HolderReport
	Totals  holder.Stats
	Initial int
	Final   int
	Elapsed time.Duration
}

// Expected returns the balance implied by the applied operations.
func (r *Report) Expected() int {
	return r.Initial + r.Totals.Deposited - r.Totals.Withdrawn
}

// Verify checks that no update was lost or duplicated.
func (r *Report) Verify() error {
	if r.Final != r.Expected() {
		return fmt.Errorf("%w: final balance %d, expected %d", bankerrors.ErrInconsistent, r.Final, r.Expected())
	}

	if r.Final < 0 {
		return fmt.Errorf("%w: negative final balance %d", bankerrors.ErrInconsistent, r.Final)
	}

	return nil
}
