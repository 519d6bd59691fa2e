package hermes

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/lyrebird/internal/session"
)

// Session lifecycle subjects for downstream swarm consumers.
const (
	SubjectSessionOpened = "swarm.lyrebird.session.opened"
	SubjectSessionClosed = "swarm.lyrebird.session.closed"
)

// SessionEvent is emitted when a honeypot session opens or terminates,
// letting other swarm services track engagement volume and outcomes without
// polling the API.
type SessionEvent struct {
	EventID           string  `json:"event_id"`
	SessionID         string  `json:"session_id"`
	Status            string  `json:"status"`
	Persona           string  `json:"persona,omitempty"`
	ScamDetected      bool    `json:"scam_detected"`
	ScamConfidence    float64 `json:"scam_confidence"`
	TurnCount         int     `json:"turn_count"`
	IntelCount        int     `json:"intel_count"`
	TerminationReason string  `json:"termination_reason,omitempty"`
	EmittedAt         int64   `json:"emitted_at"`
}

// NewSessionEvent snapshots the session fields downstream consumers care about.
func NewSessionEvent(sess *session.Session) SessionEvent {
	return SessionEvent{
		EventID:           uuid.NewString(),
		SessionID:         sess.ID,
		Status:            string(sess.Status),
		Persona:           sess.Persona,
		ScamDetected:      sess.ScamDetected,
		ScamConfidence:    sess.ScamConfidence,
		TurnCount:         sess.TurnCount,
		IntelCount:        sess.Intel.Count(),
		TerminationReason: string(sess.TerminationReason),
		EmittedAt:         time.Now().Unix(),
	}
}
