// Package sampler drives the tick-by-tick dispatch loop: the single
// dispatcher goroutine that schedules ticks, and the bounded worker pool
// that performs the actual file reads.
package sampler

import (
	"context"
	"sync"
	"time"

	"github.com/kodflow/syswit/internal/domain/catalog"
	"github.com/kodflow/syswit/internal/domain/sample"
	"github.com/kodflow/syswit/internal/domain/shared"
)

// Reader performs one parse for a single catalog entry, returning the
// metrics observed (or an empty map if the source was absent this tick).
type Reader interface {
	ReadGlobal(entry catalog.ResolvedFile) (sample.Metrics, error)
	ReadNode(entry catalog.ResolvedFile) (sample.Metrics, error)
	ReadPID(pid int, file catalog.PIDFile) (sample.Metrics, error)
}

// LiveSetSource supplies the dispatcher with the currently published live
// pid set.
type LiveSetSource interface {
	Snapshot() []int
	RootGone() bool
}

// pidBatchSize bounds how many per-pid tasks are submitted to the pool in
// one group, batching in groups of 1000 to keep goroutine fan-out bounded.
const pidBatchSize = 1000

// Clock abstracts time so tests can control tick timing; shared.Nower
// satisfies it structurally, so shared.DefaultClock is the production
// default and a fake Nower is all a test needs to supply.
type Clock interface {
	Now() time.Time
}

// FlushChecker is consulted after every tick to decide whether the current
// buffer should be handed off for flushing.
type FlushChecker interface {
	ShouldFlush(buf *sample.Buffer) bool
	Flush(buf *sample.Buffer)
}

// OnError is invoked for parser/read errors; it must not block or panic —
// per-tick failures are absorbed, never fatal.
type OnError func(tag string, err error)

// Dispatcher runs the single-threaded tick loop.
type Dispatcher struct {
	reader Reader
	liveSet LiveSetSource
	catalog catalog.Catalog
	samplePeriod time.Duration
	nrSamples int
	flush FlushChecker
	onError OnError
	clock Clock
	poolSize int

	buf *sample.Buffer
	prevSched time.Time
	tickCount int
}

// New returns a Dispatcher ready to run. nrSamples of zero means "no limit;
// run until the tracked pid exits or the caller cancels".
func New(reader Reader, liveSet LiveSetSource, cat catalog.Catalog, samplePeriod time.Duration, nrSamples int, flush FlushChecker, poolSize int, onError OnError) *Dispatcher {
	if poolSize < 1 {
		poolSize = 1
	}
	return &Dispatcher{
		reader: reader,
		liveSet: liveSet,
		catalog: cat,
		samplePeriod: samplePeriod,
		nrSamples: nrSamples,
		flush: flush,
		onError: onError,
		clock: shared.DefaultClock,
		poolSize: poolSize,
		buf: sample.NewBuffer(samplePeriod.Seconds(), nrSamples),
	}
}

// Buffer returns the buffer currently being filled. Callers must not
// mutate it directly; it is exposed so the run controller can hand it to
// the flush manager at shutdown.
func (d *Dispatcher) Buffer() *sample.Buffer { return d.buf }

// Run executes ticks until ctx is cancelled, nrSamples is exhausted, or the
// tracked root process exits.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if d.liveSet != nil && d.liveSet.RootGone() {
			return
		}

		d.waitForNextTick()
		d.runTick()

		if d.flush != nil && d.flush.ShouldFlush(d.buf) {
			go func(toFlush *sample.Buffer) {
				d.flush.Flush(toFlush)
			}(d.buf)
			d.buf = sample.NewBuffer(d.samplePeriod.Seconds(), d.nrSamples)
		}

		d.tickCount++
		if d.nrSamples > 0 && d.tickCount >= d.nrSamples {
			return
		}
	}
}

// waitForNextTick implements a catch-up, non-compounding sleep policy: a
// late tick does not try to make up lost time by firing faster, but it
// also does not compound drift across ticks.
func (d *Dispatcher) waitForNextTick() {
	now := d.clock.Now()
	if d.prevSched.IsZero() {
		d.prevSched = now
		return
	}

	wait := d.prevSched.Add(d.samplePeriod).Sub(now)
	if wait > 0 {
		time.Sleep(wait)
		d.prevSched = d.prevSched.Add(d.samplePeriod)
	} else {
		time.Sleep(d.samplePeriod)
		d.prevSched = d.clock.Now()
	}
}

func (d *Dispatcher) runTick() {
	ts := d.clock.Now().Format(sample.TimestampLayout)
	d.buf.AppendTimestamp(ts)

	var wg sync.WaitGroup
	sem := make(chan struct{}, d.poolSize)

	submit := func(tag string, fn func() (sample.Metrics, error)) {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			metrics, err := fn()
			if err != nil {
				if d.onError != nil {
					d.onError(tag, err)
				}
				return
			}
			d.buf.Series(tag).Set(ts, metrics)
		}()
	}

	for _, entry := range d.catalog.Global {
		entry := entry
		submit(entry.Tag.String(), func() (sample.Metrics, error) { return d.reader.ReadGlobal(entry) })
	}
	for _, entry := range d.catalog.Node {
		entry := entry
		submit(entry.Tag.String(), func() (sample.Metrics, error) { return d.reader.ReadNode(entry) })
	}

	if d.liveSet != nil {
		pids := d.liveSet.Snapshot()
		for _, file := range d.catalog.PIDFiles {
			file := file
			for i := 0; i < len(pids); i += pidBatchSize {
				end := i + pidBatchSize
				if end > len(pids) {
					end = len(pids)
				}
				for _, pid := range pids[i:end] {
					pid := pid
					d.buf.RecordPID(pid)
					tag := catalog.NewPIDTag(pid, file.Name).String()
					submit(tag, func() (sample.Metrics, error) { return d.reader.ReadPID(pid, file) })
				}
			}
		}
	}

	wg.Wait()
}
