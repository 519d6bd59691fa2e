package termination

import (
	"strings"

	"github.com/MikeSquared-Agency/lyrebird/internal/intel"
	"github.com/MikeSquared-Agency/lyrebird/internal/session"
)

// MaxTurns caps how many scammer messages a session engages with before the
// engagement is closed out regardless of what else is happening.
const MaxTurns = 20

type Action string

const (
	ActionContinue  Action = "CONTINUE"
	ActionTerminate Action = "TERMINATE"
)

type Decision struct {
	Action Action
	Reason session.TerminationReason
}

// ackWords is the closed vocabulary of terse sign-off words. A message of at
// most three words drawn entirely from it reads as disengagement.
var ackWords = map[string]bool{
	"ok": true, "okay": true, "k": true, "kk": true,
	"hmm": true, "hm": true, "fine": true,
	"bye": true, "goodbye": true, "later": true,
	"thanks": true, "thank": true, "you": true,
	"sure": true, "whatever": true,
}

// Decide applies the termination rules in priority order: the turn cap, then
// sufficient intelligence, then scammer disengagement, then suspicion. The
// first rule that fires wins; otherwise the session continues.
func Decide(sess *session.Session) Decision {
	if sess.TurnCount >= MaxTurns {
		return Decision{Action: ActionTerminate, Reason: session.ReasonMaxTurns}
	}
	if sess.Intel.HasPaymentIdentifier() && sess.Intel.HasContactVector() {
		return Decision{Action: ActionTerminate, Reason: session.ReasonSufficientIntel}
	}

	last := sess.LastScammerText()
	if disengaged(last, sess.PriorScammerTexts()) {
		return Decision{Action: ActionTerminate, Reason: session.ReasonDisengaged}
	}
	if suspicious(last) {
		return Decision{Action: ActionTerminate, Reason: session.ReasonSuspicion}
	}
	return Decision{Action: ActionContinue}
}

// disengaged reports whether the latest scammer message signals a lost
// audience: an empty message, a terse acknowledgement, or a repeat of
// something they already sent (compared case- and whitespace-insensitively).
func disengaged(last string, prior []string) bool {
	norm := normalize(last)
	if norm == "" {
		return true
	}

	for _, p := range prior {
		if normalize(p) == norm {
			return true
		}
	}

	words := strings.Fields(norm)
	if len(words) > 3 {
		return false
	}
	for _, w := range words {
		if !ackWords[strings.Trim(w, ".,!?;:'\"")] {
			return false
		}
	}
	return true
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func suspicious(text string) bool {
	for _, tag := range intel.ScanTactics(text) {
		if tag == intel.TagSuspicion {
			return true
		}
	}
	return false
}
