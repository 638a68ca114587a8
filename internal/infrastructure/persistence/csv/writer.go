// Package csv renders a MergedResult as an optional flat CSV form:
// one column per (tag, metric) pair plus a leading timestamps column,
// one row per timestamp. It is a thin outer-layer convenience, not part of
// the aggregation algorithm; no third-party CSV library is wired here
// because none of the retrieved example repos depend on one — the format is
// a straight grid with no quoting subtlety beyond what encoding/csv already
// handles, so reaching for a library would add a dependency without adding
// capability (see DESIGN.md).
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/kodflow/syswit/internal/domain/aggregate"
)

// column pairs a tag with one of its metric names, fixing the output's
// column order.
type column struct {
	tag string
	metric string
}

// Write renders result as a flat CSV grid at path.
func Write(path string, result *aggregate.MergedResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	columns := collectColumns(result)

	header := make([]string, 0, len(columns)+1)
	header = append(header, "timestamps")
	for _, c := range columns {
		header = append(header, fmt.Sprintf("%s %s", c.tag, c.metric))
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: writing header for %s: %w", path, err)
	}

	for i, ts := range result.TimestampsSorted {
		row := make([]string, 0, len(columns)+1)
		row = append(row, ts)
		for _, c := range columns {
			tag := result.ByTag(c.tag)
			series := tag.MetricsDense[c.metric]
			if i < len(series) {
				row = append(row, series[i].String())
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: writing row %d for %s: %w", i, path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flushing %s: %w", path, err)
	}
	return nil
}

// collectColumns orders every (tag, metric) pair in result, following the
// tags' own emit order and sorting metric names within a tag for a
// deterministic header.
func collectColumns(result *aggregate.MergedResult) []column {
	var out []column
	for _, tag := range result.Tags {
		names := make([]string, 0, len(tag.MetricsDense))
		for name := range tag.MetricsDense {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, column{tag: tag.Tag, metric: name})
		}
	}
	return out
}
