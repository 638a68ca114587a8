package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodflow/syswit/internal/infrastructure/persistence/merged"
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <result.json>",
		Short: "Print per-tag summary statistics for a merged result file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0])
		},
	}
	return cmd
}

func runAnalyze(path string) error {
	decoded, err := merged.Read(path)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	for _, summary := range merged.Summarize(decoded) {
		fmt.Printf("%s\n", summary.Tag)
		for metric, stats := range summary.Metrics {
			fmt.Printf("  %-24s min=%-12g max=%-12g mean=%-12g n=%d\n", metric, stats.Min, stats.Max, stats.Mean, stats.Samples)
		}
	}
	return nil
}
