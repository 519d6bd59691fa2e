package hermes

import (
	"encoding/json"
	"testing"

	"github.com/MikeSquared-Agency/lyrebird/internal/session"
)

func TestSessionEventParsing(t *testing.T) {
	raw := `{
		"event_id": "evt-001",
		"session_id": "sess-001",
		"status": "TERMINATED",
		"persona": "concerned_elderly",
		"scam_detected": true,
		"scam_confidence": 0.9,
		"turn_count": 7,
		"intel_count": 3,
		"termination_reason": "SUFFICIENT_INTELLIGENCE",
		"emitted_at": 1700000000
	}`

	var event SessionEvent
	err := json.Unmarshal([]byte(raw), &event)
	if err != nil {
		t.Fatalf("failed to parse SessionEvent: %v", err)
	}

	if event.SessionID != "sess-001" {
		t.Errorf("expected session_id 'sess-001', got '%s'", event.SessionID)
	}
	if event.Status != "TERMINATED" {
		t.Errorf("expected status 'TERMINATED', got '%s'", event.Status)
	}
	if event.Persona != "concerned_elderly" {
		t.Errorf("expected persona 'concerned_elderly', got '%s'", event.Persona)
	}
	if !event.ScamDetected {
		t.Error("expected scam_detected true")
	}
	if event.TurnCount != 7 {
		t.Errorf("expected turn_count 7, got %d", event.TurnCount)
	}
	if event.TerminationReason != "SUFFICIENT_INTELLIGENCE" {
		t.Errorf("expected termination_reason 'SUFFICIENT_INTELLIGENCE', got '%s'", event.TerminationReason)
	}
}

func TestNewSessionEvent(t *testing.T) {
	sess := session.New("sess-42")
	sess.Status = session.StatusTerminated
	sess.Persona = "busy_professional"
	sess.ScamDetected = true
	sess.ScamConfidence = 0.85
	sess.TurnCount = 9
	sess.TerminationReason = session.ReasonMaxTurns
	sess.Intel.UPIIDs = []string{"fraud@paytm"}
	sess.Intel.PhoneNumbers = []string{"+919876543210"}
	sess.Intel.Tactics = []string{"urgency"}

	event := NewSessionEvent(sess)

	if event.EventID == "" {
		t.Error("expected generated event_id")
	}
	if event.SessionID != "sess-42" {
		t.Errorf("expected session_id 'sess-42', got '%s'", event.SessionID)
	}
	if event.Status != string(session.StatusTerminated) {
		t.Errorf("expected terminated status, got '%s'", event.Status)
	}
	if event.IntelCount != 2 {
		t.Errorf("expected intel_count 2 (tactics excluded), got %d", event.IntelCount)
	}
	if event.TerminationReason != string(session.ReasonMaxTurns) {
		t.Errorf("expected max-turns reason, got '%s'", event.TerminationReason)
	}
	if event.EmittedAt == 0 {
		t.Error("expected emitted_at to be set")
	}
}

func TestSubjectConstants(t *testing.T) {
	if SubjectSessionOpened != "swarm.lyrebird.session.opened" {
		t.Errorf("unexpected opened subject '%s'", SubjectSessionOpened)
	}
	if SubjectSessionClosed != "swarm.lyrebird.session.closed" {
		t.Errorf("unexpected closed subject '%s'", SubjectSessionClosed)
	}
}
