package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kodflow/syswit/internal/infrastructure/persistence/merged"
)

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <result-a.json> <result-b.json>",
		Short: "Print a per-metric delta table for tags present in both result files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(args[0], args[1])
		},
	}
	return cmd
}

func runCompare(pathA, pathB string) error {
	a, err := merged.Read(pathA)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}
	b, err := merged.Read(pathB)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	summaryA := summaryByTag(merged.Summarize(a))
	summaryB := summaryByTag(merged.Summarize(b))

	var tags []string
	for tag := range summaryA {
		if _, ok := summaryB[tag]; ok {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)

	for _, tag := range tags {
		fmt.Printf("%s\n", tag)
		metrics := commonMetrics(summaryA[tag], summaryB[tag])
		for _, metric := range metrics {
			statsA := summaryA[tag][metric]
			statsB := summaryB[tag][metric]
			fmt.Printf("  %-24s mean_a=%-12g mean_b=%-12g delta=%g\n", metric, statsA.Mean, statsB.Mean, statsB.Mean-statsA.Mean)
		}
	}
	return nil
}

func summaryByTag(summaries []merged.Summary) map[string]map[string]merged.MetricStats {
	out := make(map[string]map[string]merged.MetricStats, len(summaries))
	for _, s := range summaries {
		out[s.Tag] = s.Metrics
	}
	return out
}

func commonMetrics(a, b map[string]merged.MetricStats) []string {
	var out []string
	for metric := range a {
		if _, ok := b[metric]; ok {
			out = append(out, metric)
		}
	}
	sort.Strings(out)
	return out
}
