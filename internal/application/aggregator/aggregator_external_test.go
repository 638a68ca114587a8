package aggregator_test

import (
	"testing"

	"github.com/kodflow/syswit/internal/application/aggregator"
	"github.com/kodflow/syswit/internal/domain/sample"
	"github.com/kodflow/syswit/internal/infrastructure/persistence/fragment"
	"github.com/stretchr/testify/require"
)

func metrics(pairs ...any) sample.Metrics {
	m := make(sample.Metrics)
	for i := 0; i < len(pairs); i += 2 {
		m[pairs[i].(string)] = pairs[i+1].(sample.Value)
	}
	return m
}

func TestAggregateGapFillUsesImmediatePrevious(t *testing.T) {
	frag := &fragment.Raw{
		Timestamps: []string{"t1", "t2", "t3", "t4"},
		Tags: map[string]map[string]sample.Metrics{
			"proc_stat": {
				"t1": metrics("CPU user", sample.IntValue(10)),
				"t2": metrics("CPU user", sample.IntValue(2)),
				"t4": metrics("CPU user", sample.IntValue(1)),
			},
		},
	}

	result := aggregator.Aggregate([]*fragment.Raw{frag}, false)
	tagResult := result.ByTag("proc_stat")
	require.NotNil(t, tagResult)
	require.False(t, tagResult.OffsetableKeys["CPU user"], "decreasing series must not be offset, isolating the gap-fill behavior under test")
	series := tagResult.MetricsDense["CPU user"]
	require.Len(t, series, 4)

	v3, ok := series[2].Int()
	require.True(t, ok)
	require.Equal(t, int64(2), v3, "missing sample at t3 should carry forward t2's value")
}

func TestAggregateOutOfRangeUsesTypedPlaceholder(t *testing.T) {
	frag := &fragment.Raw{
		Timestamps: []string{"t1", "t2", "t3"},
		Tags: map[string]map[string]sample.Metrics{
			"proc_stat": {
				"t1": metrics("Label", sample.StringValue("ok")),
				"t2": metrics("Label", sample.StringValue("ok")),
			},
		},
	}

	result := aggregator.Aggregate([]*fragment.Raw{frag}, false)
	series := result.ByTag("proc_stat").MetricsDense["Label"]
	require.Len(t, series, 3)
	require.Equal(t, "NA", series[2].String())
}

func TestAggregateClassifiesMonotonicIncreasingAsOffsetable(t *testing.T) {
	frag := &fragment.Raw{
		Timestamps: []string{"t1", "t2", "t3", "t4", "t5"},
		Tags: map[string]map[string]sample.Metrics{
			"proc_stat": {
				"t1": metrics("CPU user", sample.IntValue(100)),
				"t2": metrics("CPU user", sample.IntValue(101)),
				"t3": metrics("CPU user", sample.IntValue(103)),
				"t4": metrics("CPU user", sample.IntValue(103)),
				"t5": metrics("CPU user", sample.IntValue(110)),
			},
		},
	}

	result := aggregator.Aggregate([]*fragment.Raw{frag}, false)
	tagResult := result.ByTag("proc_stat")
	require.True(t, tagResult.OffsetableKeys["CPU user"])

	series := tagResult.MetricsDense["CPU user"]
	first, _ := series[0].Int()
	require.Equal(t, int64(0), first)
	last, _ := series[4].Int()
	require.Equal(t, int64(10), last)
}

func TestAggregateClassifiesStaticSeriesAsNotOffsetable(t *testing.T) {
	frag := &fragment.Raw{
		Timestamps: []string{"t1", "t2", "t3", "t4"},
		Tags: map[string]map[string]sample.Metrics{
			"proc_stat": {
				"t1": metrics("Constant", sample.IntValue(5)),
				"t2": metrics("Constant", sample.IntValue(5)),
				"t3": metrics("Constant", sample.IntValue(5)),
				"t4": metrics("Constant", sample.IntValue(5)),
			},
		},
	}

	result := aggregator.Aggregate([]*fragment.Raw{frag}, false)
	require.False(t, result.ByTag("proc_stat").OffsetableKeys["Constant"])
}

func TestAggregateDropsEmptyTags(t *testing.T) {
	frag := &fragment.Raw{
		Timestamps: []string{"t1"},
		Tags: map[string]map[string]sample.Metrics{
			"proc_empty": {},
			"proc_stat": {
				"t1": metrics("CPU user", sample.IntValue(1)),
			},
		},
	}

	result := aggregator.Aggregate([]*fragment.Raw{frag}, false)
	require.Nil(t, result.ByTag("proc_empty"))
	require.NotNil(t, result.ByTag("proc_stat"))
}

func TestAggregateOrdersTagsGlobalNodePID(t *testing.T) {
	frag := &fragment.Raw{
		Timestamps: []string{"t1"},
		Tags: map[string]map[string]sample.Metrics{
			"99_proc_stat":  {"t1": metrics("utime", sample.IntValue(1))},
			"node0_sys_mem": {"t1": metrics("MemTotal", sample.IntValue(1))},
			"proc_stat":     {"t1": metrics("CPU user", sample.IntValue(1))},
		},
	}

	result := aggregator.Aggregate([]*fragment.Raw{frag}, false)
	require.Len(t, result.Tags, 3)
	require.Equal(t, "proc_stat", result.Tags[0].Tag)
	require.Equal(t, "node0_sys_mem", result.Tags[1].Tag)
	require.Equal(t, "99_proc_stat", result.Tags[2].Tag)
}

func TestAggregateMergesAcrossFragmentsLastWriterWins(t *testing.T) {
	first := &fragment.Raw{
		Timestamps: []string{"t1"},
		Tags: map[string]map[string]sample.Metrics{
			"proc_stat": {"t1": metrics("CPU user", sample.IntValue(1))},
		},
	}
	second := &fragment.Raw{
		Timestamps: []string{"t2"},
		Tags: map[string]map[string]sample.Metrics{
			"proc_stat": {
				"t1": metrics("CPU user", sample.IntValue(999)),
				"t2": metrics("CPU user", sample.IntValue(2)),
			},
		},
	}

	result := aggregator.Aggregate([]*fragment.Raw{first, second}, false)
	require.Equal(t, []string{"t1", "t2"}, result.TimestampsSorted)
	series := result.ByTag("proc_stat").MetricsDense["CPU user"]
	v1, _ := series[0].Int()
	require.Equal(t, int64(999), v1, "later fragment must win on timestamp collision")
}

func TestAggregateIgnoreOffsetSkipsClassification(t *testing.T) {
	frag := &fragment.Raw{
		Timestamps: []string{"t1", "t2", "t3"},
		Tags: map[string]map[string]sample.Metrics{
			"proc_stat": {
				"t1": metrics("CPU user", sample.IntValue(100)),
				"t2": metrics("CPU user", sample.IntValue(101)),
				"t3": metrics("CPU user", sample.IntValue(103)),
			},
		},
	}

	result := aggregator.Aggregate([]*fragment.Raw{frag}, true)
	tagResult := result.ByTag("proc_stat")
	require.False(t, tagResult.OffsetableKeys["CPU user"], "ignoreOffset must skip classification entirely, not just the subtraction")

	series := tagResult.MetricsDense["CPU user"]
	first, _ := series[0].Int()
	require.Equal(t, int64(100), first, "values must be emitted as collected, not baseline-subtracted")
	last, _ := series[2].Int()
	require.Equal(t, int64(103), last)
}

func TestAggregateBackSearchNeverWrapsToEndOfAxis(t *testing.T) {
	frag := &fragment.Raw{
		Timestamps: []string{"t1", "t2", "t3", "t4", "t5", "t6"},
		Tags: map[string]map[string]sample.Metrics{
			"proc_stat": {
				"t1": metrics("CPU user", sample.IntValue(1)),
				"t6": metrics("CPU user", sample.IntValue(6)),
			},
		},
	}

	result := aggregator.Aggregate([]*fragment.Raw{frag}, false)
	series := result.ByTag("proc_stat").MetricsDense["CPU user"]
	require.Len(t, series, 6)
	v2, ok := series[1].Int()
	require.True(t, ok)
	require.Equal(t, int64(1), v2, "gap immediately after the first sample must carry the first sample forward, not wrap to t6")
}
