package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/journeyboard/internal/engagement"
	"github.com/elyxlabs/journeyboard/internal/metrics"
	"github.com/elyxlabs/journeyboard/internal/timeline"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show runtime statistics",
	Long: `Load the snapshot, run every aggregation once, and print the runtime
statistics collector. Useful for eyeballing dataset shape and timings.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	snap, err := st.Snapshot(context.Background())
	if err != nil {
		return err
	}

	// Exercise each operation once so the collector has data.
	start := time.Now()
	engagement.Summarize(snap.Messages)
	collector.RecordTiming(metrics.OpEngagement, time.Since(start))

	start = time.Now()
	if _, err := timeline.OrderEvents(snap.Events); err != nil {
		return err
	}
	collector.RecordTiming(metrics.OpOrderEvents, time.Since(start))

	if len(snap.Events) > 0 {
		start = time.Now()
		timeline.Resolve(snap.Events[0], snap.Messages)
		collector.RecordTiming(metrics.OpResolve, time.Since(start))
	}

	s := collector.Snapshot()

	fmt.Printf("Runtime Statistics\n")
	fmt.Printf("═══════════════════════════════════════\n")
	fmt.Printf("Dataset: %d messages, %d events, %d invalid timestamps (%d load(s))\n",
		s.Dataset.Messages, s.Dataset.Events, s.Dataset.InvalidTimestamps, s.Dataset.Reloads)

	printOp := func(name string, op *metrics.OperationSnapshot) {
		if op == nil {
			return
		}
		fmt.Printf("\n%s:\n", name)
		fmt.Printf("  Calls: %d, Total: %dms\n", op.Count, op.TotalTimeMs)
		fmt.Printf("  Time: avg %.1fms, min %dms, max %dms\n", op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	}

	printOp("Snapshot Load", s.SnapshotLoad)
	printOp("Engagement", s.Engagement)
	printOp("Resolve", s.Resolve)
	printOp("Order Events", s.OrderEvents)

	return nil
}
