package strategy

import (
	"strings"

	"github.com/MikeSquared-Agency/lyrebird/internal/persona"
	"github.com/MikeSquared-Agency/lyrebird/internal/session"
	"github.com/MikeSquared-Agency/lyrebird/internal/termination"
)

// Kind names an engagement objective for the current turn.
type Kind string

const (
	KindBuildConfusion Kind = "build_confusion"
	KindStallAndProbe  Kind = "stall_and_probe"
	KindRequestDetails Kind = "request_details"
	KindDeflect        Kind = "deflect"
)

// Objective pairs the objective kind with the directive handed to the
// composer prompt.
type Objective struct {
	Kind      Kind
	Directive string
}

// Plan is the strategist's output for one turn. Hint mirrors the termination
// rules as an advisory signal; the engine's decider makes the binding call.
type Plan struct {
	PersonaID string
	Objective Objective
	Hint      termination.Decision
}

const (
	directiveBuildConfusion = "Act confused about what is being asked. Ask them to explain the problem again in simple words."
	directiveStallAndProbe  = "Stall for time. Mention a small obstacle on your side and ask a clarifying question about how this process works."
	directiveRequestDetails = "Say you are ready to do what they ask but need the exact details first: where to send money, which number to call, which link to open."
	directiveDeflect        = "Acknowledge politely without engaging further."
)

// Select picks the persona and objective for the turn being processed. The
// persona is chosen from the scammer's text on the session's first processed
// turn and never changes afterwards.
func Select(sess *session.Session) Plan {
	personaID := sess.Persona
	if personaID == "" {
		personaID = pickPersona(sess.LastScammerText())
	}
	return Plan{
		PersonaID: personaID,
		Objective: objectiveFor(sess),
		Hint:      termination.Decide(sess),
	}
}

var jargonWords = []string{"otp", "app", "kyc", "login", "password", "install", "apk", "link", "verify"}

// pickPersona maps the opening scammer text onto a catalog entry. Bank talk
// draws the anxious retiree, account-plus-jargon talk draws the low-tech
// target, and everything else gets the distracted professional.
func pickPersona(text string) string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "bank") {
		return persona.ConcernedElderly
	}
	if strings.Contains(lower, "account") {
		for _, w := range jargonWords {
			if strings.Contains(lower, w) {
				return persona.TechUnsavvy
			}
		}
	}
	return persona.BusyProfessional
}

func objectiveFor(sess *session.Session) Objective {
	if !sess.ScamDetected {
		return Objective{Kind: KindDeflect, Directive: directiveDeflect}
	}

	switch {
	case sess.TurnCount <= 2:
		return Objective{Kind: KindBuildConfusion, Directive: directiveBuildConfusion}
	case sess.TurnCount <= 6:
		return Objective{Kind: KindStallAndProbe, Directive: directiveStallAndProbe}
	}

	obj := Objective{Kind: KindRequestDetails, Directive: directiveRequestDetails}
	switch {
	case sess.Intel.HasPaymentIdentifier() && !sess.Intel.HasContactVector():
		obj.Directive += " Ask for a phone number you can call if something goes wrong."
	case sess.Intel.HasContactVector() && !sess.Intel.HasPaymentIdentifier():
		obj.Directive += " Ask exactly where the money should go, the account number or UPI ID."
	}
	return obj
}
