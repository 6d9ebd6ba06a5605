package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"
)

// profiler writes the CPU, block and mutex profiles requested by [RootArgs].
// Block and mutex profiles show time spent waiting on the ledger lock and the
// withdrawal gate.
type profiler struct {
	args         *RootArgs
	blockProfile *pprof.Profile
	mutexProfile *pprof.Profile
	cpuFile      *os.File
}

func newProfiler(args *RootArgs) *profiler {
	return &profiler{args: args}
}

func (p *profiler) start() error {
	if p.args.GetCPUProfile() != "" {
		f, err := os.Create(p.args.GetCPUProfile())
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}

		err = pprof.StartCPUProfile(f)
		if err != nil {
			must(f.Close())

			return fmt.Errorf("failed to start CPU profile: %w", err)
		}

		p.cpuFile = f
	}

	if p.args.GetBlockProfile() != "" {
		runtime.SetBlockProfileRate(p.args.GetBlockProfileRate())

		p.blockProfile = pprof.Lookup("block")
	}

	if p.args.GetMutexProfile() != "" {
		runtime.SetMutexProfileFraction(p.args.GetMutexProfileRate())

		p.mutexProfile = pprof.Lookup("mutex")
	}

	return nil
}

func (p *profiler) stop() error {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		must(p.cpuFile.Close())

		p.cpuFile = nil
	}

	if p.blockProfile != nil {
		err := writeProfile(p.blockProfile, p.args.GetBlockProfile())
		if err != nil {
			return fmt.Errorf("failed to write block profile: %w", err)
		}

		runtime.SetBlockProfileRate(0)

		p.blockProfile = nil
	}

	if p.mutexProfile != nil {
		err := writeProfile(p.mutexProfile, p.args.GetMutexProfile())
		if err != nil {
			return fmt.Errorf("failed to write mutex profile: %w", err)
		}

		runtime.SetMutexProfileFraction(0)

		p.mutexProfile = nil
	}

	return nil
}

// stopOnError wraps run so that profiles are stopped and written when run
// fails. Cobra skips post-run hooks after an error.
func (p *profiler) stopOnError(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cc *cobra.Command, args []string) error {
		err := run(cc, args)
		if err != nil {
			return errors.Join(err, p.stop())
		}

		return nil
	}
}

func writeProfile(profile *pprof.Profile, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err //nolint:wrapcheck // Wrapped by the caller.
	}

	err = profile.WriteTo(f, 0)
	if err != nil {
		must(f.Close())

		return err //nolint:wrapcheck // Wrapped by the caller.
	}

	return f.Close() //nolint:wrapcheck // Wrapped by the caller.
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
