package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyxlabs/journeyboard/internal/config"
	"github.com/elyxlabs/journeyboard/internal/engagement"
	"github.com/elyxlabs/journeyboard/internal/metrics"
	"github.com/elyxlabs/journeyboard/internal/models"
	"github.com/elyxlabs/journeyboard/internal/store"
)

const testMessages = `[
	{"message_id": "m1", "timestamp": "2024-03-01T09:00:00Z", "sender_role": "member", "sender_name": "Rohan", "message_text": "Slept badly again."},
	{"message_id": "m2", "timestamp": "2024-03-01T09:05:00Z", "sender_role": "coach", "sender_name": "Ruby", "message_text": "Let's look at your evening routine."},
	{"message_id": "m3", "timestamp": "2024-04-02T10:00:00Z", "sender_role": "member", "sender_name": "Rohan", "message_text": "New routine is working."}
]`

const testEvents = `[
	{"event_id": "e2", "date": "2024-04-03", "title": "Routine confirmed", "summary": "s2", "rationale": "r2", "type": "Insight", "source_message_ids": ["m3"]},
	{"event_id": "e1", "date": "2024-03-02", "title": "Sleep protocol", "summary": "s1", "rationale": "r1", "type": "Plan Update", "source_message_ids": ["m1", "m2", "m404"]}
]`

func newTestServer(t *testing.T, messages, events string) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	msgPath := filepath.Join(dir, "conversations.json")
	evtPath := filepath.Join(dir, "events.json")
	require.NoError(t, os.WriteFile(msgPath, []byte(messages), 0644))
	require.NoError(t, os.WriteFile(evtPath, []byte(events), 0644))

	cfg := config.Config{PollInterval: time.Second}
	st := store.New(msgPath, evtPath, nil, nil)
	srv := New(cfg, config.Manifest{Title: "Test Journey", MemberName: "Rohan"}, st, nil, metrics.NewCollector())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, testMessages, testEvents)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJourney(t *testing.T) {
	ts := newTestServer(t, testMessages, testEvents)

	var info journeyInfo
	resp := get(t, ts, "/api/journey", &info)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Test Journey", info.Title)
	assert.Equal(t, "Rohan", info.MemberName)
	assert.Equal(t, 3, info.Messages)
	assert.Equal(t, 2, info.Events)
	assert.NotEmpty(t, info.Hash)
}

func TestSummary(t *testing.T) {
	ts := newTestServer(t, testMessages, testEvents)

	var summary engagement.Summary
	resp := get(t, ts, "/api/summary", &summary)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, summary.TotalMessages)
	assert.Equal(t, 2, summary.MemberInitiations)
	assert.Equal(t, 1, summary.TeamResponses)
	assert.InDelta(t, 2.0/3.0, summary.EngagementRatio, 1e-9)
	assert.Equal(t, 1, summary.ActiveExperts)
}

func TestEvents_Ordered(t *testing.T) {
	ts := newTestServer(t, testMessages, testEvents)

	var events []models.Event
	resp := get(t, ts, "/api/events", &events)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, "e2", events[1].ID)
}

func TestEvents_MalformedDate(t *testing.T) {
	badEvents := `[{"event_id": "e1", "date": "2024-13-40", "title": "x", "summary": "", "rationale": "", "type": "Friction", "source_message_ids": []}]`
	ts := newTestServer(t, testMessages, badEvents)

	resp := get(t, ts, "/api/events", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestEvent_NotFound(t *testing.T) {
	ts := newTestServer(t, testMessages, testEvents)

	resp := get(t, ts, "/api/events/e404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEventSources(t *testing.T) {
	ts := newTestServer(t, testMessages, testEvents)

	var sources eventSources
	resp := get(t, ts, "/api/events/e1/sources", &sources)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "e1", sources.Event.ID)
	require.Len(t, sources.Messages, 2)
	assert.Equal(t, "m1", sources.Messages[0].ID)
	assert.Equal(t, "m2", sources.Messages[1].ID)
	// m404 silently dropped but counted
	assert.Equal(t, 1, sources.MissingIDs)
}

func TestEventSources_NoLinks(t *testing.T) {
	events := `[{"event_id": "e1", "date": "2024-03-02", "title": "x", "summary": "", "rationale": "", "type": "Friction", "source_message_ids": []}]`
	ts := newTestServer(t, testMessages, events)

	var sources eventSources
	resp := get(t, ts, "/api/events/e1/sources", &sources)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, sources.Messages)
	assert.Zero(t, sources.MissingIDs)
}

func TestMessages(t *testing.T) {
	ts := newTestServer(t, testMessages, testEvents)

	var messages []models.Message
	resp := get(t, ts, "/api/messages", &messages)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, messages, 3)
}

func TestExpertsAndMonths(t *testing.T) {
	ts := newTestServer(t, testMessages, testEvents)

	var experts []engagement.ExpertCount
	get(t, ts, "/api/experts", &experts)
	require.Len(t, experts, 1)
	assert.Equal(t, "Ruby", experts[0].Expert)

	var months struct {
		Months   []engagement.MonthCount `json:"months"`
		Excluded int                     `json:"excluded"`
	}
	get(t, ts, "/api/months", &months)
	require.Len(t, months.Months, 2)
	assert.Equal(t, "2024-03", months.Months[0].Month)
	assert.Zero(t, months.Excluded)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t, testMessages, testEvents)

	// Generate some activity first
	get(t, ts, "/api/summary", nil)

	var snap metrics.Snapshot
	resp := get(t, ts, "/api/stats", &snap)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, snap.Engagement)
	assert.GreaterOrEqual(t, snap.Engagement.Count, int64(1))
}

func TestMissingData_ServiceUnavailable(t *testing.T) {
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "nope.json"), filepath.Join(dir, "events.json"), nil, nil)
	srv := New(config.Config{PollInterval: time.Second}, config.DefaultManifest(), st, nil, nil)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// The upgrade goes through the full middleware chain; the response
// wrappers must pass Hijack through or the handshake fails.
func TestWebsocket_Upgrade(t *testing.T) {
	ts := newTestServer(t, testMessages, testEvents)

	dialWS(t, ts)
}

func TestWebsocket_ReloadNotification(t *testing.T) {
	dir := t.TempDir()
	msgPath := filepath.Join(dir, "conversations.json")
	evtPath := filepath.Join(dir, "events.json")
	require.NoError(t, os.WriteFile(msgPath, []byte(testMessages), 0644))
	require.NoError(t, os.WriteFile(evtPath, []byte(testEvents), 0644))

	st := store.New(msgPath, evtPath, nil, nil)
	srv := New(config.Config{PollInterval: 10 * time.Millisecond}, config.DefaultManifest(), st, nil, metrics.NewCollector())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	// Establish the baseline snapshot before watching for changes.
	_, err := st.Snapshot(context.Background())
	require.NoError(t, err)

	conn := dialWS(t, ts)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.WatchSources(ctx)

	// Grow the messages file so the stat-based change check trips.
	grown := strings.TrimSuffix(testMessages, "]") + `,
	{"message_id": "m4", "timestamp": "2024-04-05T08:00:00Z", "sender_role": "member", "sender_name": "Rohan", "message_text": "Checking in."}
]`
	require.NoError(t, os.WriteFile(msgPath, []byte(grown), 0644))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame struct {
		Type     string `json:"type"`
		Hash     string `json:"hash"`
		Messages int    `json:"messages"`
		Events   int    `json:"events"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "snapshot_reloaded", frame.Type)
	assert.Equal(t, 4, frame.Messages)
	assert.Equal(t, 2, frame.Events)
	assert.NotEmpty(t, frame.Hash)
}
