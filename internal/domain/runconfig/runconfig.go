// Package runconfig defines the immutable configuration a single
// collection run is built from, decoded once from CLI flags by the
// outer cobra adapter and never mutated for the run's lifetime.
package runconfig

import (
	"errors"
	"fmt"
	"time"

	"github.com/kodflow/syswit/internal/domain/catalog"
	"github.com/kodflow/syswit/internal/domain/shared"
)

// Default values matching the documented CLI defaults.
const (
	DefaultSamplePeriod = 5 * time.Second
	DefaultFlushLimit = 13 * 1024 * 1024
)

// ErrEmptyCPUIntersection is returned when CPU and NUMA-node affinity
// selections have no CPU in common.
var ErrEmptyCPUIntersection = errors.New("runconfig: empty CPU affinity intersection")

// ErrMissingSpec is returned when the collector-input-config is required
// but was not supplied.
var ErrMissingSpec = errors.New("runconfig: missing collector spec")

// Config is the fully resolved configuration for one `collect` invocation.
// It is built by the outer CLI layer and handed to the run controller as
// a plain value; the run controller never reads flags or environment directly.
type Config struct {
	// Pid is the root process to track. Zero means global-only collection.
	Pid int
	// Workload, when non-empty, is a shell command forked and tracked in
	// place of Pid.
	Workload string

	IgnoreChildren bool
	IgnoreThreads bool
	KeepWorkloadAlive bool

	// NrSamples is the number of ticks to run. Zero means run until the
	// tracked process exits.
	NrSamples int
	// DelayTime is how long the run controller waits after setup before
	// starting the sampler.
	DelayTime time.Duration
	// SamplePeriod is the tick interval.
	SamplePeriod time.Duration

	OutputFileName string
	LogDir string

	// CPUAffinity and NodeAffinity are the raw `0:7,12`-style selectors;
	// resolution into a concrete cpu set happens in the affinity package.
	CPUAffinity string
	NodeAffinity string

	// FlushLimitBytes is the in-memory buffer size threshold.
	FlushLimitBytes int64

	IgnoreWorkloadLogs bool
	CSVResult bool
	IgnoreOffset bool

	// Spec is the already-decoded collector spec; the run controller never parses
	// YAML itself.
	Spec catalog.Spec

	LogLevel string
}

// Validate reports configuration errors that must be fatal before
// sampling starts.
func (c Config) Validate() error {
	if len(c.Spec.GlobalFiles) == 0 && len(c.Spec.NodeFiles) == 0 && len(c.Spec.PIDFiles) == 0 {
		return ErrMissingSpec
	}
	if c.NrSamples < 0 {
		return fmt.Errorf("%w: nr-samples must not be negative", shared.ErrInvalidArgument)
	}
	if c.SamplePeriod < 0 {
		return fmt.Errorf("%w: sample-period must not be negative", shared.ErrInvalidArgument)
	}
	return nil
}

// WithDefaults returns a copy of c with zero-valued optional fields
// replaced by their documented defaults.
func (c Config) WithDefaults() Config {
	if c.SamplePeriod <= 0 {
		c.SamplePeriod = DefaultSamplePeriod
	}
	if c.FlushLimitBytes <= 0 {
		c.FlushLimitBytes = DefaultFlushLimit
	}
	if c.OutputFileName == "" {
		c.OutputFileName = "result"
	}
	if c.LogDir == "" {
		c.LogDir = "."
	}
	return c
}
