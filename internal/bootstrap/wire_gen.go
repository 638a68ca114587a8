//go:build !wireinject

// Package bootstrap: hand-assembled equivalent of wire.go's injector graph.
// Generated wire code cannot be produced in this environment, so this file
// performs the same construction directly, provider by provider, in the
// order wire.Build lists them.
package bootstrap

import (
	"time"

	"github.com/kodflow/syswit/internal/domain/logging"
	"github.com/kodflow/syswit/internal/domain/runconfig"
	"github.com/kodflow/syswit/internal/infrastructure/persistence/runindex"
)

// NewApp assembles the final App from its wired dependencies, mirroring the
// teacher's NewAppWithHealth: a plain struct literal once every dependency
// has been constructed.
func NewApp(cfg runconfig.Config, logger logging.Logger, runIndex *runindex.Store, runDir string) *App {
	return &App{
		Config:   cfg,
		Logger:   logger,
		RunIndex: runIndex,
		RunDir:   runDir,
	}
}

// InitializeCollector is the hand-assembled counterpart to wire.go's
// documentation-only injector, performed directly since `wire gen` is never
// run against this repository.
func InitializeCollector(cfg runconfig.Config, startedAt time.Time) (*App, error) {
	runDir := NewRunDir(cfg, startedAt)
	if err := ensureRunDir(runDir); err != nil {
		return nil, err
	}

	logger := ProvideLogger(cfg, runDir)

	indexPath := ProvideRunIndexPath(cfg)
	runIndex := ProvideRunIndex(indexPath)

	return NewApp(cfg, logger, runIndex, runDir), nil
}
