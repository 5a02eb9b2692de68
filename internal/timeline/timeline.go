// Package timeline orders journey events and correlates them with the
// messages that justify them.
package timeline

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/elyxlabs/journeyboard/internal/models"
)

// ErrMalformedEventDate indicates an event with an unparseable date.
// Event dates are curated data, so ordering fails fast instead of silently
// reordering around a bad record. Use errors.Is() to check.
var ErrMalformedEventDate = errors.New("malformed event date")

// Resolve returns the messages referenced by the event's
// source_message_ids, ascending by timestamp. Ids with no matching message
// are skipped; their count is returned so callers can log a diagnostic.
// An event with no links resolves to an empty, non-nil slice — rendering a
// "no linked conversation" affordance is the caller's concern.
//
// The sort is stable: messages with equal timestamps (including the zero
// time of unparseable timestamps, which sort first) keep their input order.
func Resolve(event models.Event, messages []models.Message) ([]models.Message, int) {
	wanted := make(map[string]struct{}, len(event.SourceMessageIDs))
	for _, id := range event.SourceMessageIDs {
		wanted[id] = struct{}{}
	}

	resolved := make([]models.Message, 0, len(wanted))
	for _, m := range messages {
		if _, ok := wanted[m.ID]; ok {
			resolved = append(resolved, m)
		}
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].Time.Before(resolved[j].Time)
	})

	return resolved, len(wanted) - len(resolved)
}

// OrderEvents returns the events ascending by date for timeline display.
// Ties keep input order. Any event with an unparseable date fails the whole
// ordering with ErrMalformedEventDate.
func OrderEvents(events []models.Event) ([]models.Event, error) {
	days := make([]time.Time, len(events))
	for i, e := range events {
		day, err := e.Day()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEventDate, err)
		}
		days[i] = day
	}

	ordered := make([]models.Event, len(events))
	idx := make([]int, len(events))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return days[idx[i]].Before(days[idx[j]])
	})
	for i, j := range idx {
		ordered[i] = events[j]
	}

	return ordered, nil
}

// FindEvent returns the event with the given id, or false when absent.
func FindEvent(events []models.Event, id string) (models.Event, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return models.Event{}, false
}
