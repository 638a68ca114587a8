// Package aggregate defines the merged, densified output of a completed
// collection run.
package aggregate

import "github.com/kodflow/syswit/internal/domain/sample"

// MetricSeries is one metric's dense list of values, aligned 1:1 with the
// run's sorted timestamp axis.
type MetricSeries []sample.Value

// TagResult is one SourceTag's contribution to a MergedResult: every
// configured metric's dense series, the value each metric had at the tag's
// first sample (OffsetPrimary, recorded for every metric), and which
// metrics were classified as offsetable (OffsetableKeys).
type TagResult struct {
	Tag string
	MetricsDense map[string]MetricSeries
	OffsetPrimary map[string]sample.Value
	OffsetableKeys map[string]bool
}

// NewTagResult returns an empty TagResult for tag.
func NewTagResult(tag string) *TagResult {
	return &TagResult{
		Tag: tag,
		MetricsDense: make(map[string]MetricSeries),
		OffsetPrimary: make(map[string]sample.Value),
		OffsetableKeys: make(map[string]bool),
	}
}

// MergedResult is the aggregator's final output: one TagResult per
// SourceTag, ordered [global-proc tags, node-sys tags, per-pid tags],
// plus the timestamp axis every series was densified against.
type MergedResult struct {
	TimestampsSorted []string
	Tags []*TagResult
	SystemConfig *sample.SystemConfiguration
	// AllPIDs is the deduplicated union of every pid/tid observed in the
	// tracked process tree over the run's lifetime.
	AllPIDs []int
}

// ByTag returns the TagResult for tag, or nil if absent.
func (m *MergedResult) ByTag(tag string) *TagResult {
	for _, t := range m.Tags {
		if t.Tag == tag {
			return t
		}
	}
	return nil
}
