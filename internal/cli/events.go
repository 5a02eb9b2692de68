package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/journeyboard/internal/timeline"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the journey timeline",
	Long: `List all journey events in chronological order.

Examples:
  journeyboard events
  journeyboard events --data-dir ./data`,
	RunE: runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	snap, err := st.Snapshot(context.Background())
	if err != nil {
		return err
	}

	ordered, err := timeline.OrderEvents(snap.Events)
	if err != nil {
		return err
	}

	if len(ordered) == 0 {
		fmt.Println("No events in the timeline.")
		return nil
	}

	fmt.Printf("%s — %d events\n", manifest.Title, len(ordered))
	fmt.Printf("═══════════════════════════════════════\n\n")

	for _, e := range ordered {
		fmt.Printf("%s  %-12s %-40s %s\n", e.Date, e.Type.Label(), e.Title, e.ID)
	}

	fmt.Printf("\nUse 'journeyboard show <event-id>' to see the conversation behind an event.\n")
	return nil
}
