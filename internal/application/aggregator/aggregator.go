// Package aggregator performs the end-of-run merge, densify, and offset
// pass over a collection run's fragment files, producing the final
// MergedResult.
package aggregator

import (
	"sort"
	"strings"

	"github.com/kodflow/syswit/internal/domain/aggregate"
	"github.com/kodflow/syswit/internal/domain/sample"
	"github.com/kodflow/syswit/internal/infrastructure/persistence/fragment"
)

// rawTag accumulates one SourceTag's observations across every merged
// fragment before sorting and densification.
type rawTag struct {
	byTime map[string]sample.Metrics
}

// Aggregate merges every fragment in fragments into a single MergedResult.
// When ignoreOffset is set, offset classification/subtraction is skipped
// and every metric's dense series is emitted as collected.
func Aggregate(fragments []*fragment.Raw, ignoreOffset bool) *aggregate.MergedResult {
	raw := merge(fragments)
	clean(raw.tags)
	timestampsSorted := sortedUniqueTimestamps(raw.timestamps)

	result := &aggregate.MergedResult{
		TimestampsSorted: timestampsSorted,
		SystemConfig: raw.systemConfig,
		AllPIDs: dedupedSortedPIDs(raw.allPIDs),
	}

	tagNames := orderedTagNames(raw.tags)
	missingBackSearch := len(timestampsSorted) / 2

	for _, tagName := range tagNames {
		rt := raw.tags[tagName]
		tagResult := buildTagResult(tagName, rt, timestampsSorted, missingBackSearch)
		if !ignoreOffset {
			classifyAndApplyOffsets(tagResult)
		}
		result.Tags = append(result.Tags, tagResult)
	}

	return result
}

type mergedRaw struct {
	timestamps []string
	allPIDs []int
	systemConfig *sample.SystemConfiguration
	tags map[string]*rawTag
}

// merge implements the "union of fragments with last-writer-wins" rule:
// timestamps and all_pids concatenate, and any SourceTag's inner map
// is the union of every fragment's map for that tag with later fragments
// (later in sorted filename order) winning on collision.
func merge(fragments []*fragment.Raw) mergedRaw {
	out := mergedRaw{tags: make(map[string]*rawTag)}

	for _, frag := range fragments {
		if frag == nil {
			continue
		}
		out.timestamps = append(out.timestamps, frag.Timestamps...)
		out.allPIDs = append(out.allPIDs, frag.AllPIDs...)
		if frag.SystemConfiguration != nil {
			out.systemConfig = frag.SystemConfiguration
		}
		for tagName, series := range frag.Tags {
			rt, ok := out.tags[tagName]
			if !ok {
				rt = &rawTag{byTime: make(map[string]sample.Metrics)}
				out.tags[tagName] = rt
			}
			for ts, metrics := range series {
				rt.byTime[ts] = metrics
			}
		}
	}
	return out
}

// dedupedSortedPIDs returns the deduplicated, sorted union of every pid in
// pids, the union-of-fragments contribution to all_pids.
func dedupedSortedPIDs(pids []int) []int {
	seen := make(map[int]struct{}, len(pids))
	out := make([]int, 0, len(pids))
	for _, pid := range pids {
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		out = append(out, pid)
	}
	sort.Ints(out)
	return out
}

// clean drops any SourceTag whose inner map is empty.
func clean(tags map[string]*rawTag) {
	for name, rt := range tags {
		if len(rt.byTime) == 0 {
			delete(tags, name)
		}
	}
}

func sortedUniqueTimestamps(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, ts := range raw {
		if _, ok := seen[ts]; !ok {
			seen[ts] = struct{}{}
			out = append(out, ts)
		}
	}
	sort.Strings(out)
	return out
}

// orderedTagNames reorders tags into [global-proc, node-sys, per-pid],
// preserving a stable alphabetical order within each category for
// deterministic output.
func orderedTagNames(tags map[string]*rawTag) []string {
	var global, node, pid []string
	for name := range tags {
		switch categorize(name) {
		case categoryGlobal:
			global = append(global, name)
		case categoryNode:
			node = append(node, name)
		default:
			pid = append(pid, name)
		}
	}
	sort.Strings(global)
	sort.Strings(node)
	sort.Strings(pid)

	out := make([]string, 0, len(global)+len(node)+len(pid))
	out = append(out, global...)
	out = append(out, node...)
	out = append(out, pid...)
	return out
}

type category int

const (
	categoryGlobal category = iota
	categoryNode
	categoryPID
)

func categorize(tag string) category {
	switch {
	case strings.HasPrefix(tag, "proc_"):
		return categoryGlobal
	case strings.Contains(tag, "_sys_"):
		return categoryNode
	default:
		return categoryPID
	}
}

// buildTagResult densifies rt against the global timestamp axis, filling
// interior gaps via bounded back-search and exterior gaps with type-typed
// placeholders.
func buildTagResult(tagName string, rt *rawTag, axis []string, missingBackSearch int) *aggregate.TagResult {
	result := aggregate.NewTagResult(tagName)

	firstIdx, lastIdx := firstLastIndices(rt, axis)
	if firstIdx < 0 {
		return result
	}

	metricNames := unionMetricNames(rt)
	primary := rt.byTime[axis[firstIdx]]
	for _, m := range metricNames {
		if v, ok := primary[m]; ok {
			result.OffsetPrimary[m] = v
		}
	}

	for _, m := range metricNames {
		result.MetricsDense[m] = make(aggregate.MetricSeries, 0, len(axis))
	}

	for i, ts := range axis {
		metrics, present := rt.byTime[ts]
		switch {
		case present:
			appendRow(result, metricNames, metrics)
		case i >= firstIdx && i <= lastIdx:
			carried := backSearch(rt, axis, i, missingBackSearch)
			if carried != nil {
				appendRow(result, metricNames, carried)
			} else {
				appendPlaceholderRow(result, metricNames)
			}
		default:
			appendPlaceholderRow(result, metricNames)
		}
	}

	return result
}

func appendRow(result *aggregate.TagResult, metricNames []string, metrics sample.Metrics) {
	for _, m := range metricNames {
		v, ok := metrics[m]
		if !ok {
			v = placeholderFor(result.OffsetPrimary[m])
		}
		result.MetricsDense[m] = append(result.MetricsDense[m], v)
	}
}

func appendPlaceholderRow(result *aggregate.TagResult, metricNames []string) {
	for _, m := range metricNames {
		result.MetricsDense[m] = append(result.MetricsDense[m], placeholderFor(result.OffsetPrimary[m]))
	}
}

// placeholderFor returns the type-appropriate placeholder for a metric
// whose primary value has the given kind: "NA" for strings, 0 for ints,
// 0.0 for floats.
func placeholderFor(primary sample.Value) sample.Value {
	switch primary.Kind() {
	case sample.KindString:
		return sample.StringValue("NA")
	case sample.KindFloat:
		return sample.FloatValue(0.0)
	default:
		return sample.IntValue(0)
	}
}

// backSearch looks back up to missingBackSearch steps from index i for a
// timestamp with data, returning its metrics or nil if none is found. The
// search never wraps to the end of the axis on underflow: an out-of-range index simply ends the search.
func backSearch(rt *rawTag, axis []string, i int, missingBackSearch int) sample.Metrics {
	for step := 1; step <= missingBackSearch; step++ {
		j := i - step
		if j < 0 {
			return nil
		}
		if metrics, ok := rt.byTime[axis[j]]; ok {
			return metrics
		}
	}
	return nil
}

func firstLastIndices(rt *rawTag, axis []string) (int, int) {
	first, last := -1, -1
	for i, ts := range axis {
		if _, ok := rt.byTime[ts]; ok {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	return first, last
}

func unionMetricNames(rt *rawTag) []string {
	seen := make(map[string]struct{})
	for _, metrics := range rt.byTime {
		for name := range metrics {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// classifyAndApplyOffsets implements offset classification and
// application: a metric is offsetable iff its primary value is not a
// string, its values are not all identical, and the sequence never
// decreases left-to-right (ignoring the sentinel -1).
func classifyAndApplyOffsets(result *aggregate.TagResult) {
	for metric, series := range result.MetricsDense {
		primary := result.OffsetPrimary[metric]
		offsetable := isOffsetable(series, primary)
		result.OffsetableKeys[metric] = offsetable
		if !offsetable {
			continue
		}
		first, ok := firstNumeric(series)
		if !ok {
			continue
		}
		for i, v := range series {
			series[i] = subtract(v, first)
		}
		result.MetricsDense[metric] = series
	}
}

func isOffsetableStatic(series aggregate.MetricSeries) bool {
	if len(series) == 0 {
		return false
	}
	first := series[0]
	for _, v := range series[1:] {
		if !v.Equal(first) {
			return false
		}
	}
	return true
}

func isOffsetable(series aggregate.MetricSeries, primary sample.Value) bool {
	if primary.IsString() {
		return false
	}
	if isOffsetableStatic(series) {
		return false
	}

	var prev float64
	hasPrev := false
	for _, v := range series {
		f, isNumeric := numericValue(v)
		if !isNumeric {
			continue
		}
		if f == -1 {
			continue
		}
		if hasPrev && f-prev < 0 {
			return false
		}
		prev = f
		hasPrev = true
	}
	return true
}

func numericValue(v sample.Value) (float64, bool) {
	if i, ok := v.Int(); ok {
		return float64(i), true
	}
	if f, ok := v.Float(); ok {
		return f, true
	}
	return 0, false
}

func firstNumeric(series aggregate.MetricSeries) (sample.Value, bool) {
	if len(series) == 0 {
		return sample.Value{}, false
	}
	return series[0], true
}

func subtract(v sample.Value, first sample.Value) sample.Value {
	vf, vIsNum := numericValue(v)
	ff, fIsNum := numericValue(first)
	if !vIsNum || !fIsNum {
		return v
	}
	if _, isInt := v.Int(); isInt {
		if _, firstIsInt := first.Int(); firstIsInt {
			return sample.IntValue(int64(vf) - int64(ff))
		}
	}
	return sample.FloatValue(vf - ff)
}
