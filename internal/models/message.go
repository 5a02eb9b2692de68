// Package models defines data structures for the journey datasets.
package models

import (
	"encoding/json"
	"time"
)

// RoleMember is the sender_role of the member whose journey is tracked.
// Every other role counts as part of the care team.
const RoleMember = "member"

// timestampLayouts are the accepted message timestamp formats, tried in
// order. The source data is ISO-8601 with varying precision.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Message is a single entry of the coaching conversation log.
//
// Timestamp keeps the raw wire value so responses round-trip the source
// data unchanged; Time is the parsed form and stays zero when the raw value
// is unparseable. Such messages still count toward role totals but are
// excluded from time-bucketed aggregation.
type Message struct {
	ID         string `json:"message_id"`
	Timestamp  string `json:"timestamp"`
	SenderRole string `json:"sender_role"`
	SenderName string `json:"sender_name"`
	Text       string `json:"message_text"`

	Time time.Time `json:"-"`
}

// UnmarshalJSON decodes a message record and parses its timestamp.
func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = Message(a)
	if t, ok := ParseTimestamp(m.Timestamp); ok {
		m.Time = t
	}
	return nil
}

// IsMember reports whether the message was sent by the member.
func (m Message) IsMember() bool {
	return m.SenderRole == RoleMember
}

// HasTime reports whether the timestamp parsed successfully.
func (m Message) HasTime() bool {
	return !m.Time.IsZero()
}

// MonthKey returns the YYYY-MM bucket for the message, or false when the
// timestamp did not parse.
func (m Message) MonthKey() (string, bool) {
	if !m.HasTime() {
		return "", false
	}
	return m.Time.Format("2006-01"), true
}

// ParseTimestamp parses an ISO-8601-ish timestamp string.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
