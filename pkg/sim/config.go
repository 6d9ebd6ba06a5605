package sim

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/MacroPower/acctsim/pkg/bankerrors"
	"github.com/MacroPower/acctsim/pkg/holder"
)

const DefaultHolders = 3

// Config describes a simulation.
type Config struct {
	// Holders is the number of concurrent account holders.
	Holders int `yaml:"holders"`
	// Iterations is the number of operations each holder issues.
	Iterations int `yaml:"iterations"`
	// Pause is the delay between a holder's operations.
	Pause time.Duration `yaml:"pause"`
	// MaxAmount bounds deposit and withdrawal amounts to [1, MaxAmount].
	MaxAmount int `yaml:"max_amount"`
	// InitialBalance is the starting balance.
	InitialBalance int `yaml:"initial_balance"`
	// Seed makes random choices reproducible. Zero means unseeded.
	Seed uint64 `yaml:"seed"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		Holders:    DefaultHolders,
		Iterations: holder.DefaultIterations,
		Pause:      holder.DefaultPause,
		MaxAmount:  holder.DefaultMaxAmount,
	}
}

// LoadConfig reads a YAML file over [DefaultConfig].
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	//nolint:gosec // G304 the path is provided by the user on purpose.
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", bankerrors.ErrReadConfig, err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("%w: %q: %w", bankerrors.ErrReadConfig, path, err)
	}

	return cfg, nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var merr error

	if c.Holders < 1 {
		merr = multierror.Append(merr, fmt.Errorf("holders must be at least 1, got %d", c.Holders))
	}

	if c.Iterations < 0 {
		merr = multierror.Append(merr, fmt.Errorf("iterations must not be negative, got %d", c.Iterations))
	}

	if c.Pause < 0 {
		merr = multierror.Append(merr, fmt.Errorf("pause must not be negative, got %s", c.Pause))
	}

	if c.MaxAmount < 1 {
		merr = multierror.Append(merr, fmt.Errorf("max_amount must be at least 1, got %d", c.MaxAmount))
	}

	if c.InitialBalance < 0 {
		merr = multierror.Append(merr, fmt.Errorf("initial_balance must not be negative, got %d", c.InitialBalance))
	}

	if merr != nil {
		return fmt.Errorf("%w: %w", bankerrors.ErrInvalidConfig, merr)
	}

	// Every operation could be a maximal deposit.
	headroom := math.MaxInt - c.InitialBalance
	if c.Iterations > 0 && c.MaxAmount > headroom/c.Holders/c.Iterations {
		return fmt.Errorf("%w: initial_balance %d plus %d holders making %d deposits of up to %d overflows the balance",
			bankerrors.ErrInvalidConfig, c.InitialBalance, c.Holders, c.Iterations, c.MaxAmount)
	}

	return nil
}
