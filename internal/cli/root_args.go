package cli

import "time"

type RootArgs struct {
	logLevel         *string
	logFormat        *string
	cpuProfile       *string
	blockProfile     *string
	mutexProfile     *string
	blockProfileRate *int
	mutexProfileRate *int
}

func NewRootArgs() *RootArgs {
	return &RootArgs{
		logLevel:         new(string),
		logFormat:        new(string),
		cpuProfile:       new(string),
		blockProfile:     new(string),
		mutexProfile:     new(string),
		blockProfileRate: new(int),
		mutexProfileRate: new(int),
	}
}

func (a *RootArgs) GetLogLevel() string {
	return *a.logLevel
}

func (a *RootArgs) GetLogFormat() string {
	return *a.logFormat
}

func (a *RootArgs) GetCPUProfile() string {
	return *a.cpuProfile
}

func (a *RootArgs) GetBlockProfile() string {
	return *a.blockProfile
}

func (a *RootArgs) GetMutexProfile() string {
	return *a.mutexProfile
}

func (a *RootArgs) GetBlockProfileRate() int {
	return *a.blockProfileRate
}

func (a *RootArgs) GetMutexProfileRate() int {
	return *a.mutexProfileRate
}

type RunArgs struct {
	configFile     *string
	holders        *int
	iterations     *int
	pause          *time.Duration
	maxAmount      *int
	initialBalance *int
	seed           *uint64
	metrics        *bool
}

func NewRunArgs() *RunArgs {
	return &RunArgs{
		configFile:     new(string),
		holders:        new(int),
		iterations:     new(int),
		pause:          new(time.Duration),
		maxAmount:      new(int),
		initialBalance: new(int),
		seed:           new(uint64),
		metrics:        new(bool),
	}
}

func (a *RunArgs) GetConfigFile() string {
	return *a.configFile
}

func (a *RunArgs) GetMetrics() bool {
	return *a.metrics
}
