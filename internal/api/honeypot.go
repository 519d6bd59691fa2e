package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/lyrebird/internal/engine"
	"github.com/MikeSquared-Agency/lyrebird/internal/session"
	"github.com/MikeSquared-Agency/lyrebird/internal/store"
)

// honeypotRequest is the platform's turn payload: one scammer message plus
// any conversation history we have not seen yet.
type honeypotRequest struct {
	SessionID string            `json:"sessionId"`
	Message   session.Message   `json:"message"`
	History   []session.Message `json:"conversationHistory"`
	Metadata  turnMetadata      `json:"metadata"`
}

type turnMetadata struct {
	Channel  string `json:"channel"`
	Language string `json:"language"`
}

// honeypotResponse carries the reply while the session is active, plus
// closure details once the turn terminated the engagement.
type honeypotResponse struct {
	SessionID         string `json:"sessionId"`
	Status            string `json:"status"`
	Reply             string `json:"reply"`
	TurnCount         int    `json:"turnCount"`
	ScamDetected      bool   `json:"scamDetected"`
	TerminationReason string `json:"terminationReason,omitempty"`
	ReportDelivery    string `json:"reportDelivery,omitempty"`
}

// honeypot handles POST /api/honeypot.
func (s *Server) honeypot(w http.ResponseWriter, r *http.Request) {
	var req honeypotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	// The platform always speaks as the scammer; tolerate an omitted sender.
	if req.Message.Sender == "" {
		req.Message.Sender = session.SenderScammer
	}

	res, err := s.engine.ProcessMessage(r.Context(), engine.TurnInput{
		SessionID: req.SessionID,
		Message:   req.Message,
		History:   req.History,
		Channel:   req.Metadata.Channel,
		Language:  req.Metadata.Language,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	resp := honeypotResponse{
		SessionID:    res.Session.ID,
		Status:       "success",
		Reply:        res.Reply,
		TurnCount:    res.Session.TurnCount,
		ScamDetected: res.Session.ScamDetected,
	}
	if res.Session.Status == session.StatusTerminated {
		resp.Status = "terminated"
		resp.TerminationReason = string(res.Session.TerminationReason)
		if res.ReportDelivered {
			resp.ReportDelivery = "delivered"
		} else {
			resp.ReportDelivery = "failed"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// getSession handles GET /api/sessions/{id}, returning the full record.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// listReports handles GET /api/reports?limit=N against the archive.
func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "report archive not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit: "+v)
			return
		}
		limit = n
	}

	rows, err := s.archive.RecentReports(r.Context(), limit)
	if err != nil {
		s.logger.Error("report listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "report listing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reports": rows,
		"count":   len(rows),
	})
}

// writeEngineError maps engine and store errors onto status codes.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrAlreadyTerminated):
		writeError(w, http.StatusConflict, "session already terminated")
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
