// Package tracker maintains the live set of pids and tids descending from a
// tracked root process, so the sampling engine always dispatches per-pid
// reads against an up-to-date process tree.
package tracker

import (
	"context"
	"sync/atomic"
	"time"
)

// ProcessReader abstracts the OS/procfs operations the tracker needs,
// letting tests substitute a fixture tree instead of the real /proc.
type ProcessReader interface {
	// Children returns every descendant pid of root, recursively. It
	// returns an empty slice (not an error) if root no longer exists.
	Children(root int) ([]int, error)
	// Exists reports whether pid is still a live process.
	Exists(pid int) bool
	// Tasks returns the tids found under /proc/<pid>/task/ for pid.
	Tasks(pid int) ([]int, error)
}

// threadCheckReset is the decay-counter value the tracker resets to every
// time it performs a thread enumeration pass.
const threadCheckReset = 5

// Tracker maintains the append-only live pid/tid set for one tracked root
// process.
type Tracker struct {
	reader ProcessReader
	root int
	ignoreChildren bool
	ignoreThreads bool
	cpuCount int

	live atomic.Pointer[[]int]
	decay int
	rootGone atomic.Bool
}

// New returns a Tracker for root, applying the given policy flags. cpuCount
// feeds the "live set smaller than 3 * cpu_count" thread-rescan trigger.
func New(reader ProcessReader, root int, ignoreChildren, ignoreThreads bool, cpuCount int) *Tracker {
	t := &Tracker{
		reader: reader,
		root: root,
		ignoreChildren: ignoreChildren,
		ignoreThreads: ignoreThreads,
		cpuCount: cpuCount,
		decay: threadCheckReset,
	}
	initial := []int{root}
	t.live.Store(&initial)
	return t
}

// Snapshot returns the currently published live pid/tid set. Safe for
// concurrent use with Run; it never observes a torn read because the
// tracker publishes a whole new slice atomically.
func (t *Tracker) Snapshot() []int {
	p := t.live.Load()
	if p == nil {
		return nil
	}
	return *p
}

// RootGone reports whether the tracked root process has been observed to
// no longer exist, which signals the run controller to begin shutdown.
func (t *Tracker) RootGone() bool {
	return t.rootGone.Load()
}

// Run performs enumeration passes until ctx is cancelled. There is no sleep
// between passes: cadence is governed purely by /proc read latency.
func (t *Tracker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		t.Tick()
	}
}

// Tick performs a single enumeration pass: children discovery (unless
// ignored) followed by a conditional thread-set expansion. It is
// exported so callers needing fine-grained control (and tests) can drive
// the tracker one step at a time instead of via Run's tight loop.
func (t *Tracker) Tick() {
	if !t.reader.Exists(t.root) {
		t.rootGone.Store(true)
		return
	}

	current := append([]int(nil), *t.live.Load()...)

	if !t.ignoreChildren {
		children, err := t.reader.Children(t.root)
		if err == nil {
			current = unionInts(current, children)
		}
	}

	if !t.ignoreThreads {
		t.decay--
		if t.decay <= 0 || len(current) < 3*t.cpuCount {
			current = t.expandThreads(current)
			t.decay = threadCheckReset
		}
	}

	t.live.Store(&current)
}

func (t *Tracker) expandThreads(pids []int) []int {
	out := append([]int(nil), pids...)
	for _, pid := range pids {
		tids, err := t.reader.Tasks(pid)
		if err != nil {
			continue
		}
		out = unionInts(out, tids)
	}
	return out
}

func unionInts(base []int, add []int) []int {
	seen := make(map[int]struct{}, len(base))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	out := base
	for _, v := range add {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// Wait blocks until the root process is observed gone or ctx is cancelled,
// polling at the given interval. It exists for callers (the run controller)
// that need a simple way to await tracker exit without managing their own
// select loop.
func Wait(ctx context.Context, t *Tracker, pollInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if t.RootGone() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
