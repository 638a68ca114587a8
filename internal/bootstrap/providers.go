// Package bootstrap: provider functions consumed by both the wireinject
// injector (wire.go) and its hand-assembled counterpart (wire_gen.go),
// splitting "plain constructor" wiring from "needs a little logic" wiring.
package bootstrap

import (
	"fmt"
	"time"

	domainconfig "github.com/kodflow/syswit/internal/domain/config"
	"github.com/kodflow/syswit/internal/domain/logging"
	"github.com/kodflow/syswit/internal/domain/runconfig"
	"github.com/kodflow/syswit/internal/infrastructure/observability/logging/collector"
	"github.com/kodflow/syswit/internal/infrastructure/persistence/runindex"
)

// runDirTimestampLayout names one run's directory with millisecond
// precision so concurrent runs never collide on directory name.
const runDirTimestampLayout = "20060102_150405.000"

// NewRunDir returns the exclusive run directory for one invocation, rooted
// under cfg.LogDir.
func NewRunDir(cfg runconfig.Config, at time.Time) string {
	return fmt.Sprintf("%s/%s", cfg.LogDir, at.Format(runDirTimestampLayout))
}

// ProvideLogger builds the run's logger from the resolved log level and run
// directory. An unrecognised level string is treated as info; if a writer
// cannot be built, it falls back to a console-only logger rather than
// failing the run over a logging misconfiguration.
func ProvideLogger(cfg runconfig.Config, runDir string) logging.Logger {
	level := "info"
	if cfg.LogLevel != "" {
		level = cfg.LogLevel
	}
	logCfg := domainconfig.CollectorLogging{
		Writers: []domainconfig.WriterConfig{
			{Type: "console", Level: level},
			{Type: "json", Level: level, JSON: domainconfig.JSONWriterConfig{Path: "collector.log"}},
		},
	}
	logger, err := collector.BuildLogger(logCfg, runDir)
	if err != nil {
		return collector.DefaultLogger()
	}
	return logger
}

// ProvideRunIndexPath returns the run index database path, placed in the
// parent of every run directory so one index records all runs rather than
// one index per run.
func ProvideRunIndexPath(cfg runconfig.Config) string {
	return fmt.Sprintf("%s/runindex.bolt", cfg.LogDir)
}

// ProvideRunIndex opens the BoltDB-backed run index at dbPath. A failure to
// open it is non-fatal: callers get a nil Store and run without history tracking.
func ProvideRunIndex(dbPath string) *runindex.Store {
	store, err := runindex.Open(dbPath)
	if err != nil {
		return nil
	}
	return store
}
