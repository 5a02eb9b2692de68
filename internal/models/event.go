package models

import (
	"fmt"
	"time"
)

// eventDateLayout is the strict day-granularity format of curated events.
const eventDateLayout = "2006-01-02"

// EventType categorizes a timeline event. The enumeration is open: unknown
// values are kept as-is and render generically instead of failing.
type EventType string

// Curated event categories.
const (
	EventDiagnostics EventType = "Diagnostics"
	EventPlanUpdate  EventType = "Plan Update"
	EventFriction    EventType = "Friction"
	EventInsight     EventType = "Insight"
)

// Known reports whether the type is one of the curated categories.
func (t EventType) Known() bool {
	switch t {
	case EventDiagnostics, EventPlanUpdate, EventFriction, EventInsight:
		return true
	}
	return false
}

// Label returns a display label, mapping empty types to "Other".
func (t EventType) Label() string {
	if t == "" {
		return "Other"
	}
	return string(t)
}

// Event is a curated, dated milestone of the journey: a decision, diagnostic
// or friction point, with a rationale and weak links (by id) to the messages
// that justify it. Messages are owned solely by the message collection.
type Event struct {
	ID               string    `json:"event_id"`
	Date             string    `json:"date"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Rationale        string    `json:"rationale"`
	Type             EventType `json:"type"`
	SourceMessageIDs []string  `json:"source_message_ids"`
}

// Day parses the event date. Event dates are curated data, so a parse
// failure indicates an upstream data-integrity bug and is returned as an
// error rather than absorbed.
func (e Event) Day() (time.Time, error) {
	t, err := time.Parse(eventDateLayout, e.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("event %s: invalid date %q: %w", e.ID, e.Date, err)
	}
	return t, nil
}
