package merged

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/kodflow/syswit/internal/domain/shared"
)

// Summary is one tag's per-metric min/max/mean, the shape the analyze
// subcommand prints.
type Summary struct {
	Tag string
	Metrics map[string]MetricStats
}

// MetricStats holds the summary statistics for one metric's dense series.
type MetricStats struct {
	Min, Max, Mean float64
	Samples int
}

// Read loads a consolidated result file written by Write and returns, per
// tag, the dense metric series as raw JSON values (numbers or strings) so
// callers can compute statistics without reconstructing sample.Value.
func Read(path string) (map[string]map[string][]json.Number, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("merged: %s: %w", path, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("merged: reading %s: %w", path, err)
	}

	var generic map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("merged: parsing %s: %w", path, err)
	}

	out := make(map[string]map[string][]json.Number)
	for key, raw := range generic {
		if key == "timestamps" || key == "system_configuration" || key == "all_pids" {
			continue
		}
		var entry [2]json.RawMessage
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		var dense map[string][]any
		d := json.NewDecoder(bytes.NewReader(entry[0]))
		d.UseNumber()
		if err := d.Decode(&dense); err != nil {
			continue
		}
		series := make(map[string][]json.Number, len(dense))
		for metric, values := range dense {
			nums := make([]json.Number, len(values))
			for i, v := range values {
				if n, ok := v.(json.Number); ok {
					nums[i] = n
				} else {
					nums[i] = json.Number(fmt.Sprint(v))
				}
			}
			series[metric] = nums
		}
		out[key] = series
	}
	return out, nil
}

// Summarize computes min/max/mean per metric for every tag in a decoded
// result, skipping non-numeric (string) samples.
func Summarize(decoded map[string]map[string][]json.Number) []Summary {
	tags := make([]string, 0, len(decoded))
	for tag := range decoded {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	summaries := make([]Summary, 0, len(tags))
	for _, tag := range tags {
		metrics := make(map[string]MetricStats)
		for metric, series := range decoded[tag] {
			stats, ok := statsOf(series)
			if ok {
				metrics[metric] = stats
			}
		}
		summaries = append(summaries, Summary{Tag: tag, Metrics: metrics})
	}
	return summaries
}

func statsOf(series []json.Number) (MetricStats, bool) {
	var (
		min, max, sum float64
		count int
	)
	for _, n := range series {
		f, err := n.Float64()
		if err != nil {
			continue
		}
		if count == 0 {
			min, max = f, f
		}
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
		sum += f
		count++
	}
	if count == 0 {
		return MetricStats{}, false
	}
	return MetricStats{Min: min, Max: max, Mean: sum / float64(count), Samples: count}, true
}
