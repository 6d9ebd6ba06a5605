package cli

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/MacroPower/acctsim/pkg/metrics"
	"github.com/MacroPower/acctsim/pkg/sim"
)

const runExample = `  # Run three holders with five operations each
  acctsim run

  # Run a reproducible, faster simulation
  acctsim run --holders 8 --iterations 20 --pause 10ms --seed 42

  # Load settings from a file and print metrics
  acctsim run --config acctsim.yaml --metrics
`

// NewRunCmd returns the run command.
func NewRunCmd() *cobra.Command {
	args := NewRunArgs()

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the account simulation",
		Example: runExample,
		Args:    cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg, err := args.config(cc)
			if err != nil {
				return err
			}

			return runSimulation(cc, cfg, args.GetMetrics())
		},
	}

	def := sim.DefaultConfig()

	cmd.Flags().StringVar(args.configFile, "config", "", "Read simulation settings from a YAML file")
	cmd.Flags().IntVar(args.holders, "holders", def.Holders, "Number of concurrent account holders")
	cmd.Flags().IntVar(args.iterations, "iterations", def.Iterations, "Operations issued by each holder")
	cmd.Flags().DurationVar(args.pause, "pause", def.Pause, "Pause between a holder's operations")
	cmd.Flags().IntVar(args.maxAmount, "max-amount", def.MaxAmount, "Largest deposit or withdrawal amount")
	cmd.Flags().IntVar(args.initialBalance, "initial-balance", def.InitialBalance, "Starting balance")
	cmd.Flags().Uint64Var(args.seed, "seed", def.Seed, "Seed for reproducible choices (0 for random)")
	cmd.Flags().BoolVar(args.metrics, "metrics", false, "Print operation metrics after the run")

	err := cmd.MarkFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(err)
	}

	return cmd
}

// config builds the simulation config: defaults, then the config file, then
// any flags set explicitly.
func (a *RunArgs) config(cc *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()

	if a.GetConfigFile() != "" {
		var err error

		cfg, err = sim.LoadConfig(a.GetConfigFile())
		if err != nil {
			return cfg, err //nolint:wrapcheck // Already wrapped.
		}
	}

	flags := cc.Flags()

	var merr error

	setInt := func(name string, dst *int) {
		if !flags.Changed(name) {
			return
		}

		v, err := flags.GetInt(name)
		if err != nil {
			merr = multierror.Append(merr, err)

			return
		}

		*dst = v
	}

	setInt("holders", &cfg.Holders)
	setInt("iterations", &cfg.Iterations)
	setInt("max-amount", &cfg.MaxAmount)
	setInt("initial-balance", &cfg.InitialBalance)

	if flags.Changed("pause") {
		v, err := flags.GetDuration("pause")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		cfg.Pause = v
	}

	if flags.Changed("seed") {
		v, err := flags.GetUint64("seed")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		cfg.Seed = v
	}

	if merr != nil {
		return cfg, fmt.Errorf("invalid argument: %w", merr)
	}

	return cfg, nil
}

func runSimulation(cc *cobra.Command, cfg sim.Config, showMetrics bool) error {
	collector := metrics.NewCollector()
	collector.SetBalance(cfg.InitialBalance)

	s, err := sim.New(cfg,
		sim.WithLogger(slog.Default()),
		sim.WithSubscriber(collector.Observe),
	)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	report, err := s.Run()
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	out := cc.OutOrStdout()
	styled := isTerminal(out)

	_, err = fmt.Fprintln(out, renderReport(report, styled))
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !showMetrics {
		return nil
	}

	samples, err := collector.Snapshot()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	_, err = fmt.Fprintln(out, renderMetrics(samples, styled))
	if err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	return nil
}
