// Package bootstrap wires the collector's components into one runnable
// App and implements the run controller: affinity pinning, one-time
// system-details collection, the configured startup delay, tracker/
// sampler start-up, graceful shutdown, and the aggregation pass. It is
// the outer-layer composition root; no package under internal/domain or
// internal/application imports it.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/kodflow/syswit/internal/application/affinity"
	"github.com/kodflow/syswit/internal/application/aggregator"
	appcatalog "github.com/kodflow/syswit/internal/application/catalog"
	"github.com/kodflow/syswit/internal/application/flush"
	"github.com/kodflow/syswit/internal/application/sampler"
	"github.com/kodflow/syswit/internal/application/tracker"
	"github.com/kodflow/syswit/internal/domain/catalog"
	"github.com/kodflow/syswit/internal/domain/logging"
	"github.com/kodflow/syswit/internal/domain/runconfig"
	"github.com/kodflow/syswit/internal/domain/sample"
	"github.com/kodflow/syswit/internal/domain/shared"
	"github.com/kodflow/syswit/internal/infrastructure/persistence/csv"
	"github.com/kodflow/syswit/internal/infrastructure/persistence/fragment"
	"github.com/kodflow/syswit/internal/infrastructure/persistence/merged"
	"github.com/kodflow/syswit/internal/infrastructure/persistence/runindex"
	"github.com/kodflow/syswit/internal/infrastructure/procfs"
	"github.com/kodflow/syswit/internal/infrastructure/sysinfo"
	"github.com/kodflow/syswit/internal/infrastructure/workload"
)

// App is one fully wired collection run, built by NewApp (or, in the
// documentation-only wire.go injector, by InitializeCollector).
type App struct {
	Config runconfig.Config
	Logger logging.Logger
	RunIndex *runindex.Store
	RunDir string
}

// poolSizeFromCPUCount sizes the per-tick worker pool to one goroutine
// per CPU, falling back to 1 on an unreported CPU count.
func poolSizeFromCPUCount(cpuCount int) int {
	if cpuCount < 1 {
		return 1
	}
	return cpuCount
}

// Run executes one collection run to completion: pin affinity, collect
// system details, delay, track, sample, then flush and aggregate on exit.
// ctx cancellation (e.g. SIGINT) triggers the same graceful
// shutdown path as a tracked process exiting or nr-samples exhausting.
func (a *App) Run(ctx context.Context) error {
	started := time.Now()
	cpuCount := runtime.NumCPU()

	if err := ensureRunDir(a.RunDir); err != nil {
		return err
	}

	if err := a.pinAffinity(cpuCount); err != nil {
		return fmt.Errorf("bootstrap: resolving affinity: %w", err)
	}

	sysConfig, err := sysinfo.Collect()
	if err != nil {
		a.Logger.Warn("run_controller", "sysinfo_failed", err.Error(), nil)
	}

	if a.Config.DelayTime > 0 {
		time.Sleep(a.Config.DelayTime)
	}

	numaNodes, err := sysinfo.CountNUMANodes()
	if err != nil {
		numaNodes = 1
	}
	cat := appcatalog.NewBuilder().Build(a.Config.Spec, numaNodes)
	reader := procfs.NewReader("", cpuCount)

	flushManager := flush.New(fragment.DirWriter{Dir: a.RunDir}, a.Config.FlushLimitBytes, func(counter int, err error) {
		a.Logger.Error("flush_manager", "flush_failed", err.Error(), map[string]any{"counter": counter})
	})

	var liveSet sampler.LiveSetSource
	var workloadHandle *workload.Handle
	pid := a.Config.Pid

	if a.Config.Workload != "" {
		outputPath := ""
		if !a.Config.IgnoreWorkloadLogs {
			outputPath = filepath.Join(a.RunDir, "workload.output")
		}
		h, err := workload.Launch(ctx, a.Config.Workload, outputPath, a.Config.IgnoreWorkloadLogs)
		if err != nil {
			return fmt.Errorf("bootstrap: launching workload: %w", err)
		}
		workloadHandle = h
		pid = h.PID
	}

	trackerCtx, cancelTracker := context.WithCancel(ctx)
	defer cancelTracker()

	if pid != 0 {
		t := tracker.New(procfs.NewProcessTree(), pid, a.Config.IgnoreChildren, a.Config.IgnoreThreads, cpuCount)
		liveSet = t
		go t.Run(trackerCtx)
	}

	dispatcher := sampler.New(reader, liveSet, cat, a.Config.SamplePeriod, a.Config.NrSamples, flushManager, poolSizeFromCPUCount(cpuCount), func(tag string, err error) {
		a.Logger.Warn("sampler", "tick_error", err.Error(), map[string]any{"tag": tag})
	})
	dispatcher.Buffer().SystemConfiguration = sysConfig
	a.collectHugepages(reader, dispatcher.Buffer(), cat.Hugepages)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	if workloadHandle != nil {
		go func() {
			select {
			case <-workloadHandle.Wait():
				cancelRun()
			case <-runCtx.Done():
			}
		}()
	}

	dispatcher.Run(runCtx)
	cancelTracker()

	finalCounter := flushManager.NextCounter()
	if err := fragment.Write(fragment.WritePath(a.RunDir, finalCounter), dispatcher.Buffer()); err != nil {
		a.Logger.Error("run_controller", "final_flush_failed", err.Error(), nil)
	}

	exitReason := "completed"
	if workloadHandle != nil && !a.Config.KeepWorkloadAlive {
		if err := workloadHandle.Kill(); err != nil {
			a.Logger.Warn("run_controller", "workload_kill_failed", err.Error(), nil)
		}
	}

	sampleCount, err := a.aggregate()
	if err != nil {
		return fmt.Errorf("bootstrap: aggregating: %w", err)
	}

	elapsed := shared.FromTimeDuration(time.Since(started))
	a.Logger.Info("run_controller", "run_complete", elapsed.String(), map[string]any{"sample_count": sampleCount})

	if a.RunIndex != nil {
		_ = a.RunIndex.Record(a.RunDir, runindex.RunRecord{
			Dir: a.RunDir,
			StartedAt: started,
			EndedAt: time.Now(),
			SampleCount: int64(sampleCount),
			ExitReason: exitReason,
			OutputFile: merged.ResultPath(a.RunDir, a.Config.OutputFileName),
		})
	}

	return nil
}

// collectHugepages runs the one-shot hugepage pass: each entry is read
// exactly once, at run start, and recorded under a single synthetic tick
// rather than re-read on every sampling period.
func (a *App) collectHugepages(reader *procfs.Reader, buf *sample.Buffer, hugepages []catalog.ResolvedHugepage) {
	if len(hugepages) == 0 {
		return
	}

	ts := time.Now().Format(sample.TimestampLayout)
	buf.AppendTimestamp(ts)
	for _, hp := range hugepages {
		metrics, err := reader.ReadHugepage(hp)
		if err != nil {
			a.Logger.Warn("run_controller", "hugepage_read_failed", err.Error(), map[string]any{"tag": hp.Tag.String()})
			continue
		}
		buf.Series(hp.Tag.String()).Set(ts, metrics)
	}
}

// aggregate performs the post-run fragment merge: read every
// fragment, aggregate, write the consolidated result (and optional CSV),
// then delete the fragments on success.
func (a *App) aggregate() (int, error) {
	paths, err := fragment.ListFragments(a.RunDir)
	if err != nil {
		return 0, fmt.Errorf("listing fragments: %w", err)
	}

	raws := make([]*fragment.Raw, 0, len(paths))
	for _, p := range paths {
		raw, err := fragment.Read(p)
		if err != nil {
			a.Logger.Warn("aggregator", "fragment_read_failed", err.Error(), map[string]any{"path": p})
			continue
		}
		raws = append(raws, raw)
	}

	result := aggregator.Aggregate(raws, a.Config.IgnoreOffset)

	if err := merged.Write(a.RunDir, a.Config.OutputFileName, result); err != nil {
		return 0, fmt.Errorf("writing merged result: %w", err)
	}

	if a.Config.CSVResult {
		csvPath := filepath.Join(a.RunDir, a.Config.OutputFileName+".csv")
		if err := csv.Write(csvPath, result); err != nil {
			a.Logger.Warn("aggregator", "csv_write_failed", err.Error(), nil)
		}
	}

	if err := fragment.Delete(paths); err != nil {
		a.Logger.Warn("aggregator", "fragment_cleanup_failed", err.Error(), nil)
	}

	return len(result.TimestampsSorted), nil
}

// pinAffinity resolves and applies the run's CPU affinity, if any affinity
// flag was supplied.
func (a *App) pinAffinity(cpuCount int) error {
	if a.Config.CPUAffinity == "" && a.Config.NodeAffinity == "" {
		return nil
	}

	numaNodes, err := sysinfo.CountNUMANodes()
	if err != nil {
		numaNodes = 0
	}
	nodes := make(affinity.NodeCPUs, numaNodes)
	for n := 0; n < numaNodes; n++ {
		cpus, err := sysinfo.NodeCPUList(n)
		if err != nil {
			continue
		}
		nodes[n] = cpus
	}

	cpus, err := affinity.Resolve(a.Config.CPUAffinity, a.Config.NodeAffinity, cpuCount, nodes)
	if err != nil {
		return err
	}
	return sysinfo.SetAffinity(cpus)
}

// ensureRunDir creates dir (and any missing parents) with owner-only
// permissions.
func ensureRunDir(dir string) error {
	// nosemgrep: go.lang.correctness.permissions.file_permission.incorrect-default-permission
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("bootstrap: creating run directory %s: %w", dir, err)
	}
	return nil
}
