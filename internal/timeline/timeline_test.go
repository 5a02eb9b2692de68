package timeline

import (
	"testing"

	"github.com/elyxlabs/journeyboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id, ts string) models.Message {
	m := models.Message{ID: id, Timestamp: ts, SenderRole: "member", SenderName: "Rohan"}
	if t, ok := models.ParseTimestamp(ts); ok {
		m.Time = t
	}
	return m
}

func TestResolve_SortedByTimestamp(t *testing.T) {
	messages := []models.Message{
		msg("m3", "2024-03-03T10:00:00Z"),
		msg("m1", "2024-03-01T09:00:00Z"),
		msg("m2", "2024-03-02T09:00:00Z"),
	}
	event := models.Event{ID: "e1", SourceMessageIDs: []string{"m1", "m2", "m3"}}

	got, missing := Resolve(event, messages)

	require.Len(t, got, 3)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
	assert.Equal(t, "m3", got[2].ID)
	assert.Zero(t, missing)
}

func TestResolve_UnknownIDsIgnored(t *testing.T) {
	messages := []models.Message{msg("m1", "2024-03-01T09:00:00Z")}
	event := models.Event{ID: "e1", SourceMessageIDs: []string{"m1", "m404"}}

	got, missing := Resolve(event, messages)

	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, 1, missing)
}

func TestResolve_EmptySourceIDs(t *testing.T) {
	messages := []models.Message{msg("m1", "2024-03-01T09:00:00Z")}

	got, missing := Resolve(models.Event{ID: "e1"}, messages)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, missing)
}

func TestResolve_NoMatches(t *testing.T) {
	got, missing := Resolve(models.Event{ID: "e1", SourceMessageIDs: []string{"x", "y"}}, nil)

	assert.Empty(t, got)
	assert.Equal(t, 2, missing)
}

func TestResolve_TimestampTiesKeepInputOrder(t *testing.T) {
	messages := []models.Message{
		msg("first", "2024-03-01T09:00:00Z"),
		msg("second", "2024-03-01T09:00:00Z"),
	}
	event := models.Event{ID: "e1", SourceMessageIDs: []string{"second", "first"}}

	got, _ := Resolve(event, messages)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
}

func TestResolve_ZeroTimeSortsFirst(t *testing.T) {
	messages := []models.Message{
		msg("dated", "2024-03-01T09:00:00Z"),
		msg("undated", "not-a-date"),
	}
	event := models.Event{ID: "e1", SourceMessageIDs: []string{"dated", "undated"}}

	got, _ := Resolve(event, messages)

	require.Len(t, got, 2)
	assert.Equal(t, "undated", got[0].ID)
}

func TestResolve_Deterministic(t *testing.T) {
	messages := []models.Message{
		msg("m2", "2024-03-02T09:00:00Z"),
		msg("m1", "2024-03-01T09:00:00Z"),
	}
	event := models.Event{ID: "e1", SourceMessageIDs: []string{"m1", "m2"}}

	a, _ := Resolve(event, messages)
	b, _ := Resolve(event, messages)
	assert.Equal(t, a, b)
}

func TestOrderEvents(t *testing.T) {
	events := []models.Event{
		{ID: "e2", Date: "2024-05-10"},
		{ID: "e1", Date: "2024-03-02"},
		{ID: "e3", Date: "2024-08-01"},
	}

	got, err := OrderEvents(events)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "e2", got[1].ID)
	assert.Equal(t, "e3", got[2].ID)

	// Input order untouched
	assert.Equal(t, "e2", events[0].ID)
}

func TestOrderEvents_StableOnEqualDates(t *testing.T) {
	events := []models.Event{
		{ID: "a", Date: "2024-05-10"},
		{ID: "b", Date: "2024-05-10"},
		{ID: "c", Date: "2024-05-09"},
	}

	got, err := OrderEvents(events)
	require.NoError(t, err)

	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "b", got[2].ID)
}

func TestOrderEvents_MalformedDateFailsFast(t *testing.T) {
	events := []models.Event{
		{ID: "e1", Date: "2024-03-02"},
		{ID: "e2", Date: "2024-13-40"},
	}

	_, err := OrderEvents(events)
	require.ErrorIs(t, err, ErrMalformedEventDate)
	assert.Contains(t, err.Error(), "e2")
}

func TestOrderEvents_Empty(t *testing.T) {
	got, err := OrderEvents(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindEvent(t *testing.T) {
	events := []models.Event{{ID: "e1"}, {ID: "e2"}}

	e, ok := FindEvent(events, "e2")
	require.True(t, ok)
	assert.Equal(t, "e2", e.ID)

	_, ok = FindEvent(events, "e404")
	assert.False(t, ok)
}
