package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/lyrebird/internal/classifier"
	"github.com/MikeSquared-Agency/lyrebird/internal/composer"
	"github.com/MikeSquared-Agency/lyrebird/internal/engine"
	"github.com/MikeSquared-Agency/lyrebird/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer backs the API with a memory store and no model client, so
// replies are deterministic fallbacks.
func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()

	st, err := store.New(store.TypeMemory)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := discardLogger()
	eng := engine.New(st,
		classifier.New(nil, "", logger),
		composer.New(nil, "", 0, logger),
		nil, nil, nil, logger)
	return NewServer(8750, apiKey, eng, nil, logger)
}

func postHoneypot(srv *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/honeypot", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

const scamTurnBody = `{
	"sessionId": "api-1",
	"message": {"sender": "scammer", "text": "Your bank account will be blocked. Verify immediately.", "timestamp": 1700000000},
	"conversationHistory": [],
	"metadata": {"channel": "SMS", "language": "en"}
}`

const botTurnBody = `{
	"sessionId": "bot-1",
	"message": {"sender": "scammer", "text": "are you a bot?", "timestamp": 1700000000}
}`

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	if body["activeSessions"] != float64(0) {
		t.Errorf("expected 0 active sessions, got %v", body["activeSessions"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	// Drive one session to termination so the counters move.
	if w := postHoneypot(srv, botTurnBody); w.Code != http.StatusOK {
		t.Fatalf("honeypot turn failed: %d %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest("GET", "/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["service"] != "lyrebird" {
		t.Errorf("expected service lyrebird, got %v", body["service"])
	}
	if body["modelConfigured"] != false {
		t.Errorf("expected modelConfigured false, got %v", body["modelConfigured"])
	}
	if body["terminatedSessions"] != float64(1) {
		t.Errorf("expected 1 terminated session, got %v", body["terminatedSessions"])
	}
	if body["reportsEmitted"] != float64(1) {
		t.Errorf("expected 1 report emitted, got %v", body["reportsEmitted"])
	}
}

func TestHoneypotEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	w := postHoneypot(srv, scamTurnBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp honeypotResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("expected status success, got %q", resp.Status)
	}
	if resp.SessionID != "api-1" {
		t.Errorf("expected sessionId api-1, got %q", resp.SessionID)
	}
	if resp.Reply == "" {
		t.Error("expected a reply")
	}
	if resp.TurnCount != 1 {
		t.Errorf("expected turnCount 1, got %d", resp.TurnCount)
	}
	if !resp.ScamDetected {
		t.Error("expected scamDetected true")
	}
	if resp.TerminationReason != "" {
		t.Errorf("active session should carry no termination reason, got %q", resp.TerminationReason)
	}
}

func TestHoneypotTermination(t *testing.T) {
	srv := newTestServer(t, "")

	w := postHoneypot(srv, botTurnBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp honeypotResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "terminated" {
		t.Errorf("expected status terminated, got %q", resp.Status)
	}
	if resp.TerminationReason != "SUSPICION_DETECTED" {
		t.Errorf("expected SUSPICION_DETECTED, got %q", resp.TerminationReason)
	}
	if resp.ReportDelivery != "failed" {
		t.Errorf("no reporter wired, expected delivery failed, got %q", resp.ReportDelivery)
	}

	// A further message for the closed session conflicts.
	w = postHoneypot(srv, strings.Replace(botTurnBody, "are you a bot?", "hello?", 1))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on terminated session, got %d", w.Code)
	}
}

func TestHoneypotRejectsInvalidJSON(t *testing.T) {
	srv := newTestServer(t, "")

	w := postHoneypot(srv, `{"sessionId":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error envelope")
	}
}

func TestHoneypotRequiresSessionID(t *testing.T) {
	srv := newTestServer(t, "")

	w := postHoneypot(srv, `{"message": {"sender": "scammer", "text": "hello"}}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHoneypotDefaultsSender(t *testing.T) {
	srv := newTestServer(t, "")

	w := postHoneypot(srv, `{"sessionId": "nosender-1", "message": {"text": "hello there my friend"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp honeypotResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("expected status success, got %q", resp.Status)
	}
}

func TestGetSessionEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	if w := postHoneypot(srv, scamTurnBody); w.Code != http.StatusOK {
		t.Fatalf("honeypot turn failed: %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/sessions/api-1", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["sessionId"] != "api-1" {
		t.Errorf("expected sessionId api-1, got %v", body["sessionId"])
	}
	if body["status"] != "ACTIVE" {
		t.Errorf("expected ACTIVE, got %v", body["status"])
	}
	if body["channel"] != "SMS" {
		t.Errorf("expected channel SMS, got %v", body["channel"])
	}
	transcript, ok := body["transcript"].([]any)
	if !ok || len(transcript) != 2 {
		t.Errorf("expected 2 transcript entries, got %v", body["transcript"])
	}
}

func TestGetSessionNotFound(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest("GET", "/api/sessions/ghost", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] != "session not found" {
		t.Errorf("expected session not found, got %q", body["error"])
	}
}

func TestAPIKeyEnforcement(t *testing.T) {
	srv := newTestServer(t, "sesame")

	// Missing key.
	req := httptest.NewRequest("GET", "/api/sessions/any", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing key: expected 401, got %d", w.Code)
	}

	// Wrong key.
	req = httptest.NewRequest("GET", "/api/sessions/any", nil)
	req.Header.Set("X-API-Key", "open")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: expected 401, got %d", w.Code)
	}

	// Correct key reaches the handler.
	req = httptest.NewRequest("GET", "/api/sessions/any", nil)
	req.Header.Set("X-API-Key", "sesame")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("correct key: expected 404 from handler, got %d", w.Code)
	}

	// Health stays open.
	req = httptest.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}
}

func TestReportsWithoutArchive(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest("GET", "/api/reports", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
