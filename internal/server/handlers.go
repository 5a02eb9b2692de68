package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/elyxlabs/journeyboard/internal/engagement"
	"github.com/elyxlabs/journeyboard/internal/metrics"
	"github.com/elyxlabs/journeyboard/internal/models"
	"github.com/elyxlabs/journeyboard/internal/store"
	"github.com/elyxlabs/journeyboard/internal/timeline"
)

// writeJSON sends a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

// writeError sends a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// snapshot fetches the current snapshot, writing an error response on
// failure. The bool reports whether the caller may proceed.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*store.Snapshot, bool) {
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("snapshot unavailable", "error", err)
		switch {
		case errors.Is(err, store.ErrDataUnavailable):
			s.writeError(w, http.StatusServiceUnavailable, "source data unavailable")
		case errors.Is(err, store.ErrMalformedData):
			s.writeError(w, http.StatusInternalServerError, "source data malformed")
		default:
			s.writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		}
		return nil, false
	}
	return snap, true
}

// journeyInfo describes the loaded journey for dashboard headers.
type journeyInfo struct {
	Title             string `json:"title"`
	MemberName        string `json:"member_name"`
	Description       string `json:"description,omitempty"`
	Messages          int    `json:"messages"`
	Events            int    `json:"events"`
	InvalidTimestamps int    `json:"invalid_timestamps"`
	Hash              string `json:"hash"`
	LoadedAt          string `json:"loaded_at"`
}

func (s *Server) handleJourney(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, journeyInfo{
		Title:             s.manifest.Title,
		MemberName:        s.manifest.MemberName,
		Description:       s.manifest.Description,
		Messages:          len(snap.Messages),
		Events:            len(snap.Events),
		InvalidTimestamps: snap.InvalidTimestamps,
		Hash:              snap.Hash,
		LoadedAt:          snap.LoadedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	start := time.Now()
	summary := engagement.Summarize(snap.Messages)
	s.collector.RecordTiming(metrics.OpEngagement, time.Since(start))

	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExperts(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	start := time.Now()
	counts := engagement.MessagesPerExpert(snap.Messages)
	s.collector.RecordTiming(metrics.OpEngagement, time.Since(start))

	if counts == nil {
		counts = []engagement.ExpertCount{}
	}
	s.writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	start := time.Now()
	counts, excluded := engagement.InitiationsPerMonth(snap.Messages)
	s.collector.RecordTiming(metrics.OpEngagement, time.Since(start))

	if counts == nil {
		counts = []engagement.MonthCount{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"months":   counts,
		"excluded": excluded,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	start := time.Now()
	ordered, err := timeline.OrderEvents(snap.Events)
	s.collector.RecordTiming(metrics.OpOrderEvents, time.Since(start))
	if err != nil {
		s.logger.Error("event ordering failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "event log contains a malformed date")
		return
	}

	s.writeJSON(w, http.StatusOK, ordered)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	event, ok := timeline.FindEvent(snap.Events, chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "event not found")
		return
	}

	s.writeJSON(w, http.StatusOK, event)
}

// eventSources is the transcript view for a selected event.
type eventSources struct {
	Event      models.Event     `json:"event"`
	Messages   []models.Message `json:"messages"`
	MissingIDs int              `json:"missing_ids"`
}

func (s *Server) handleEventSources(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	event, ok := timeline.FindEvent(snap.Events, chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "event not found")
		return
	}

	start := time.Now()
	resolved, missing := timeline.Resolve(event, snap.Messages)
	s.collector.RecordTiming(metrics.OpResolve, time.Since(start))

	if missing > 0 {
		s.logger.Debug("event references unknown message ids",
			"event", event.ID, "missing", missing)
	}

	s.writeJSON(w, http.StatusOK, eventSources{
		Event:      event,
		Messages:   resolved,
		MissingIDs: missing,
	})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	messages := snap.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	s.writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.collector.Snapshot())
}
