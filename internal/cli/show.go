package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/journeyboard/internal/timeline"
)

var showCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show an event and its source conversation",
	Long: `Show an event's summary and rationale, followed by the messages that
justified it, in chronological order.

Examples:
  journeyboard show e12
  journeyboard show e12 --data-dir ./data`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	snap, err := st.Snapshot(context.Background())
	if err != nil {
		return err
	}

	event, ok := timeline.FindEvent(snap.Events, args[0])
	if !ok {
		return fmt.Errorf("event %q not found (use 'journeyboard events' to list ids)", args[0])
	}

	fmt.Printf("%s  %s [%s]\n", event.Date, event.Title, event.Type.Label())
	fmt.Printf("═══════════════════════════════════════\n\n")
	if event.Summary != "" {
		fmt.Printf("Summary:   %s\n", event.Summary)
	}
	if event.Rationale != "" {
		fmt.Printf("Rationale: %s\n", event.Rationale)
	}

	resolved, missing := timeline.Resolve(event, snap.Messages)
	if missing > 0 {
		fmt.Printf("\n(%d referenced message id(s) not present in the log)\n", missing)
	}

	if len(resolved) == 0 {
		fmt.Println("\nNo source conversations linked for this event.")
		return nil
	}

	fmt.Printf("\nSource conversation (%d messages):\n\n", len(resolved))
	for _, m := range resolved {
		ts := m.Timestamp
		if m.HasTime() {
			ts = m.Time.Format("2006-01-02 15:04")
		}
		fmt.Printf("  %s  %s (%s)\n", ts, m.SenderName, m.SenderRole)
		fmt.Printf("      %s\n\n", m.Text)
	}

	return nil
}
