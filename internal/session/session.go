package session

import (
	"errors"
	"time"

	"github.com/MikeSquared-Agency/lyrebird/internal/intel"
)

// ErrAlreadyTerminated is returned when a message arrives for a session that
// has already emitted its final report. Terminated sessions stay in the store
// so late messages are rejected rather than silently reopened.
var ErrAlreadyTerminated = errors.New("session already terminated")

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusTerminated Status = "TERMINATED"
)

// TerminationReason classifies why an engagement ended. Set exactly once.
type TerminationReason string

const (
	ReasonMaxTurns        TerminationReason = "MAX_TURNS_REACHED"
	ReasonSufficientIntel TerminationReason = "SUFFICIENT_INTELLIGENCE"
	ReasonDisengaged      TerminationReason = "SCAMMER_DISENGAGED"
	ReasonSuspicion       TerminationReason = "SUSPICION_DETECTED"
)

// Transcript sender labels.
const (
	SenderScammer  = "scammer"
	SenderHoneypot = "honeypot"
)

type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Session is the per-engagement record. The engine mutates it exclusively,
// working on a clone and publishing the whole updated record once per turn.
type Session struct {
	ID                string             `json:"sessionId"`
	TurnCount         int                `json:"turnCount"`
	Status            Status             `json:"status"`
	Persona           string             `json:"currentPersona,omitempty"`
	ScamDetected      bool               `json:"scamDetected"`
	ScamConfidence    float64            `json:"scamConfidence"`
	Language          string             `json:"language,omitempty"`
	Channel           string             `json:"channel,omitempty"`
	Transcript        []Message          `json:"transcript"`
	Intel             intel.Intelligence `json:"extractedIntelligence"`
	TerminationReason TerminationReason  `json:"terminationReason,omitempty"`
	Notes             []string           `json:"agentNotes,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	Version           int64              `json:"version"`
}

func New(id string) *Session {
	return &Session{
		ID:     id,
		Status: StatusActive,
	}
}

// SeedHistory imports a prior conversation supplied by the transport. The
// turn counter starts at the number of scammer messages already exchanged.
func (s *Session) SeedHistory(history []Message) {
	for _, m := range history {
		s.Transcript = append(s.Transcript, m)
		if m.Sender == SenderScammer {
			s.TurnCount++
		}
	}
}

func (s *Session) Append(m Message) {
	s.Transcript = append(s.Transcript, m)
}

// LastScammerText returns the text of the most recent scammer message.
func (s *Session) LastScammerText() string {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Sender == SenderScammer {
			return s.Transcript[i].Text
		}
	}
	return ""
}

// PriorScammerTexts returns every scammer message before the most recent one,
// oldest first.
func (s *Session) PriorScammerTexts() []string {
	last := -1
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Sender == SenderScammer {
			last = i
			break
		}
	}
	var texts []string
	for i := 0; i < last; i++ {
		if s.Transcript[i].Sender == SenderScammer {
			texts = append(texts, s.Transcript[i].Text)
		}
	}
	return texts
}

// Clone returns a deep copy safe to mutate without touching the original.
func (s *Session) Clone() *Session {
	out := *s
	out.Transcript = append([]Message(nil), s.Transcript...)
	out.Notes = append([]string(nil), s.Notes...)
	out.Intel = s.Intel.Clone()
	return &out
}
