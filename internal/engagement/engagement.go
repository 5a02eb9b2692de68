// Package engagement computes read-only engagement statistics over the
// message log. Every function is a pure function of its input: no side
// effects, deterministic output, and empty collections are valid input.
package engagement

import (
	"sort"

	"github.com/elyxlabs/journeyboard/internal/models"
)

// ExpertCount is the message volume of one care-team member.
type ExpertCount struct {
	Expert string `json:"expert"`
	Count  int    `json:"count"`
}

// MonthCount is the member initiation volume of one YYYY-MM bucket.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MemberInitiations counts messages sent by the member.
func MemberInitiations(messages []models.Message) int {
	n := 0
	for _, m := range messages {
		if m.IsMember() {
			n++
		}
	}
	return n
}

// TeamResponses counts messages sent by anyone other than the member.
func TeamResponses(messages []models.Message) int {
	return len(messages) - MemberInitiations(messages)
}

// MessagesPerExpert groups non-member messages by sender name and counts
// each group, descending by count. Ties keep first-seen input order, which
// makes the output deterministic for a given collection.
func MessagesPerExpert(messages []models.Message) []ExpertCount {
	index := make(map[string]int)
	var counts []ExpertCount

	for _, m := range messages {
		if m.IsMember() {
			continue
		}
		i, ok := index[m.SenderName]
		if !ok {
			i = len(counts)
			index[m.SenderName] = i
			counts = append(counts, ExpertCount{Expert: m.SenderName})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// InitiationsPerMonth buckets member messages by YYYY-MM, ascending by
// month. Messages whose timestamp did not parse are excluded from the
// buckets; the second return value reports how many were excluded so
// callers can surface the gap.
func InitiationsPerMonth(messages []models.Message) ([]MonthCount, int) {
	buckets := make(map[string]int)
	excluded := 0

	for _, m := range messages {
		if !m.IsMember() {
			continue
		}
		month, ok := m.MonthKey()
		if !ok {
			excluded++
			continue
		}
		buckets[month]++
	}

	counts := make([]MonthCount, 0, len(buckets))
	for month, n := range buckets {
		counts = append(counts, MonthCount{Month: month, Count: n})
	}
	// YYYY-MM sorts chronologically as a string
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Month < counts[j].Month
	})
	return counts, excluded
}

// Ratio returns member / total, defined as 0 for an empty collection.
func Ratio(member, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(member) / float64(total)
}

// Summary is the one-call aggregate consumed by every serving surface.
type Summary struct {
	TotalMessages     int           `json:"total_messages"`
	MemberInitiations int           `json:"member_initiations"`
	TeamResponses     int           `json:"team_responses"`
	EngagementRatio   float64       `json:"engagement_ratio"`
	ActiveExperts     int           `json:"active_experts"`
	ObservedMonths    int           `json:"observed_months"`
	AvgPerMonth       float64       `json:"avg_messages_per_month"`
	PerExpert         []ExpertCount `json:"messages_per_expert"`
	PerMonth          []MonthCount  `json:"initiations_per_month"`
	ExcludedFromMonth int           `json:"excluded_from_month_buckets"`
}

// Summarize computes the full engagement summary in one pass over the
// collection (plus the grouped aggregates).
func Summarize(messages []models.Message) Summary {
	member := MemberInitiations(messages)
	perExpert := MessagesPerExpert(messages)
	perMonth, excluded := InitiationsPerMonth(messages)

	months := make(map[string]struct{})
	for _, m := range messages {
		if key, ok := m.MonthKey(); ok {
			months[key] = struct{}{}
		}
	}

	avg := 0.0
	if len(months) > 0 {
		avg = float64(len(messages)) / float64(len(months))
	}

	return Summary{
		TotalMessages:     len(messages),
		MemberInitiations: member,
		TeamResponses:     len(messages) - member,
		EngagementRatio:   Ratio(member, len(messages)),
		ActiveExperts:     len(perExpert),
		ObservedMonths:    len(months),
		AvgPerMonth:       avg,
		PerExpert:         perExpert,
		PerMonth:          perMonth,
		ExcludedFromMonth: excluded,
	}
}
