package sample

import "sync"

// TimestampLayout is the canonical on-disk timestamp format: local
// wall-clock, microsecond precision.
const TimestampLayout = "2006_01_02_15_04_05.000000"

// Metrics is a single tag's observations at a single timestamp: a metric
// name mapped to its Value.
type Metrics map[string]Value

// SystemConfiguration records the one-time system details snapshot taken
// at run start.
type SystemConfiguration struct {
	Hostname string
	KernelRelease string
	CPUCount int
	NUMANodes int
	OS string
	Arch string
	RuntimeVersion string
	NetworkInterfaces []string
	KernelCmdline string
}

// TagSeries is one SourceTag's accumulated observations within a
// BufferSlice: timestamp string to Metrics, guarded by its own mutex since
// the sampling engine assigns at most one writer per (tag, tick) cell but
// many goroutines may write distinct cells of the same tag concurrently.
type TagSeries struct {
	mu sync.Mutex
	byTime map[string]Metrics
}

// NewTagSeries returns an empty TagSeries.
func NewTagSeries() *TagSeries {
	return &TagSeries{byTime: make(map[string]Metrics)}
}

// Set records metrics for ts, overwriting any prior value for the same
// timestamp.
func (s *TagSeries) Set(ts string, metrics Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTime[ts] = metrics
}

// Get returns the metrics recorded for ts, if any.
func (s *TagSeries) Get(ts string) (Metrics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byTime[ts]
	return m, ok
}

// Snapshot returns a shallow copy of the timestamp-to-metrics map.
func (s *TagSeries) Snapshot() map[string]Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Metrics, len(s.byTime))
	for k, v := range s.byTime {
		out[k] = v
	}
	return out
}

// Buffer is the current in-memory sampling window: the set of timestamps
// recorded so far, the pids ever observed, the one-shot system
// configuration, and per-tag series. It is the in-memory analogue of the
// on-disk BufferSlice; serialization to the legacy single-element-list
// container shape happens only at the fragment-writer boundary.
type Buffer struct {
	mu sync.Mutex
	Timestamps []string
	AllPIDs []int
	SystemConfiguration *SystemConfiguration
	SamplePeriod float64
	NrSamples int

	series map[string]*TagSeries
}

// NewBuffer returns an empty Buffer ready to accept samples.
func NewBuffer(samplePeriod float64, nrSamples int) *Buffer {
	return &Buffer{
		SamplePeriod: samplePeriod,
		NrSamples: nrSamples,
		series: make(map[string]*TagSeries),
	}
}

// AppendTimestamp records ts as the next tick. Only the dispatcher may call
// this, which is what guarantees strictly increasing insertion order.
func (b *Buffer) AppendTimestamp(ts string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Timestamps = append(b.Timestamps, ts)
}

// Series returns the TagSeries for tag, creating it if absent.
func (b *Buffer) Series(tag string) *TagSeries {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.series[tag]
	if !ok {
		s = NewTagSeries()
		b.series[tag] = s
	}
	return s
}

// Tags returns every SourceTag with at least one recorded observation.
func (b *Buffer) Tags() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.series))
	for tag := range b.series {
		out = append(out, tag)
	}
	return out
}

// RecordPID appends pid to AllPIDs if not already present.
func (b *Buffer) RecordPID(pid int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.AllPIDs {
		if existing == pid {
			return
		}
	}
	b.AllPIDs = append(b.AllPIDs, pid)
}

// EstimatedSize is an incrementally-cheap stand-in for a full
// serialize-and-measure check: it sums timestamp count and per-tag
// observation counts weighted by an average cell cost rather than
// re-marshaling the buffer every tick.
func (b *Buffer) EstimatedSize() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	const avgCellBytes = 48
	var cells int64
	for _, s := range b.series {
		s.mu.Lock()
		cells += int64(len(s.byTime))
		s.mu.Unlock()
	}
	return cells*avgCellBytes + int64(len(b.Timestamps))*8
}
