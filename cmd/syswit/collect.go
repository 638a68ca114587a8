package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kodflow/syswit/internal/bootstrap"
	"github.com/kodflow/syswit/internal/domain/runconfig"
	"github.com/kodflow/syswit/internal/domain/shared"
	"github.com/kodflow/syswit/internal/infrastructure/config/yaml"
)

// collectFlags mirrors runconfig.Config field-for-field, the way cobra
// flags are decoded directly into the immutable config the run controller
// consumes.
type collectFlags struct {
	pid int
	workload string
	ignoreChildren bool
	ignoreThreads bool
	keepWorkloadAlive bool
	nrSamples int
	delayTime float64
	samplePeriod float64
	outputFileName string
	cpuAffinity string
	nodeAffinity string
	flushLimit string
	ignoreWorkloadLogs bool
	logDir string
	csvResult bool
	ignoreOffset bool
	collectorConfig string
	logLevel string
}

func newCollectCommand() *cobra.Command {
	var f collectFlags

	cmd := &cobra.Command{
		Use: "collect",
		Short: "Run one bounded collection pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context(), f)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.pid, "pid", 0, "root process to track (0 = global-only collection)")
	flags.StringVar(&f.workload, "workload", "", "shell command to launch and track instead of --pid")
	flags.BoolVar(&f.ignoreChildren, "ignore-children", false, "do not expand the live set to child processes")
	flags.BoolVar(&f.ignoreThreads, "ignore-threads", false, "do not expand the live set to threads")
	flags.BoolVar(&f.keepWorkloadAlive, "keep-workload-alive", false, "do not kill the launched workload at shutdown")
	flags.IntVar(&f.nrSamples, "nr-samples", 0, "number of ticks to run (0 = until workload exit or interrupt)")
	flags.Float64Var(&f.delayTime, "delay-time", 0, "delay in seconds before sampling starts")
	flags.Float64Var(&f.samplePeriod, "sample-period", runconfig.DefaultSamplePeriod.Seconds(), "tick interval in seconds")
	flags.StringVar(&f.outputFileName, "output-file-name", "result", "base name of the consolidated result file")
	flags.StringVar(&f.cpuAffinity, "cpu-affinity", "", "CPU affinity selector, e.g. \"0:7,12\"")
	flags.StringVar(&f.nodeAffinity, "node-affinity", "", "NUMA-node affinity selector, e.g. \"0,1\"")
	flags.StringVar(&f.flushLimit, "flush-limit", shared.FormatSize(runconfig.DefaultFlushLimit), "in-memory buffer size threshold before a flush, e.g. \"512KB\"")
	flags.BoolVar(&f.ignoreWorkloadLogs, "ignore-workload-logs", false, "do not capture the workload's stdout/stderr")
	flags.StringVar(&f.logDir, "log-dir", ".", "base directory under which one run directory is created")
	flags.BoolVar(&f.csvResult, "csv-result", false, "also emit the consolidated result as CSV")
	flags.BoolVar(&f.ignoreOffset, "ignore-offset", false, "skip offset classification/subtraction in the aggregator")
	flags.StringVar(&f.collectorConfig, "collector-input-config", "", "path to the YAML spec listing files to collect (required)")
	flags.StringVar(&f.logLevel, "log-level", "info", "outer-layer logging verbosity: debug, info, warn, error")

	return cmd
}

func runCollect(ctx context.Context, f collectFlags) error {
	if f.collectorConfig == "" {
		return fmt.Errorf("collect: --collector-input-config is required")
	}

	spec, err := yaml.New().Load(f.collectorConfig)
	if err != nil {
		return fmt.Errorf("collect: loading spec: %w", err)
	}

	flushLimitBytes, err := shared.ParseSize(f.flushLimit)
	if err != nil {
		return fmt.Errorf("collect: parsing --flush-limit: %w", err)
	}

	cfg := runconfig.Config{
		Pid: f.pid,
		Workload: f.workload,
		IgnoreChildren: f.ignoreChildren,
		IgnoreThreads: f.ignoreThreads,
		KeepWorkloadAlive: f.keepWorkloadAlive,
		NrSamples: f.nrSamples,
		DelayTime: time.Duration(f.delayTime * float64(time.Second)),
		SamplePeriod: time.Duration(f.samplePeriod * float64(time.Second)),
		OutputFileName: f.outputFileName,
		LogDir: f.logDir,
		CPUAffinity: f.cpuAffinity,
		NodeAffinity: f.nodeAffinity,
		FlushLimitBytes: flushLimitBytes,
		IgnoreWorkloadLogs: f.ignoreWorkloadLogs,
		CSVResult: f.csvResult,
		IgnoreOffset: f.ignoreOffset,
		Spec: spec,
		LogLevel: f.logLevel,
	}.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.InitializeCollector(cfg, time.Now())
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	if app.RunIndex != nil {
		defer app.RunIndex.Close()
	}
	defer app.Logger.Close()

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	fmt.Printf("collection complete: %s\n", app.RunDir)
	return nil
}
