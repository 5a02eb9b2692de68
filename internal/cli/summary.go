package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/journeyboard/internal/engagement"
	"github.com/elyxlabs/journeyboard/internal/metrics"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show engagement metrics",
	Long: `Show engagement statistics for the journey: member vs team message
volume, message counts per expert, and member initiations per month.

Examples:
  journeyboard summary
  journeyboard summary --data-dir ./data`,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	snap, err := st.Snapshot(context.Background())
	if err != nil {
		return err
	}

	start := time.Now()
	s := engagement.Summarize(snap.Messages)
	collector.RecordTiming(metrics.OpEngagement, time.Since(start))

	fmt.Printf("Engagement Summary — %s\n", manifest.MemberName)
	fmt.Printf("═══════════════════════════════════════\n\n")

	fmt.Printf("Total messages:      %d\n", s.TotalMessages)
	fmt.Printf("Member initiations:  %d\n", s.MemberInitiations)
	fmt.Printf("Team responses:      %d\n", s.TeamResponses)
	fmt.Printf("Member engagement:   %.1f%%\n", s.EngagementRatio*100)
	fmt.Printf("Active experts:      %d\n", s.ActiveExperts)
	if s.ObservedMonths > 0 {
		fmt.Printf("Avg messages/month:  %.1f (over %d months)\n", s.AvgPerMonth, s.ObservedMonths)
	}

	if len(s.PerExpert) > 0 {
		fmt.Printf("\nMessage Volume by Expert:\n")
		for _, ec := range s.PerExpert {
			fmt.Printf("  %-25s %5d\n", ec.Expert, ec.Count)
		}
	}

	if len(s.PerMonth) > 0 {
		fmt.Printf("\nMember Initiations per Month:\n")
		for _, mc := range s.PerMonth {
			fmt.Printf("  %-10s %5d\n", mc.Month, mc.Count)
		}
	}

	if s.ExcludedFromMonth > 0 {
		fmt.Printf("\n%d message(s) excluded from monthly buckets (unparseable timestamp)\n", s.ExcludedFromMonth)
	}

	return nil
}
