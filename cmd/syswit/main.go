// Command syswit is the CLI outer layer over the collector: three
// subcommands (collect, analyze, compare) built with spf13/cobra, grounded
// in the pack's own telemetry-CLI idiom (root command, Flags().XVar calls,
// signal.NotifyContext-driven cancellation).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "syswit",
		Short: "Periodic /proc and /sys telemetry collector",
		Long: `syswit samples a configured set of /proc, /sys/devices/system/node, and
per-process files at a fixed period, buffers samples with size-bounded
flushes to disk, and merges the result into one densified, offset-
normalized time series once the run ends.`,
	}

	root.AddCommand(newCollectCommand())
	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newCompareCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
