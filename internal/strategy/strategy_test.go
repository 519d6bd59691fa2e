package strategy

import (
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/lyrebird/internal/persona"
	"github.com/MikeSquared-Agency/lyrebird/internal/session"
	"github.com/MikeSquared-Agency/lyrebird/internal/termination"
)

func scamSession(turn int, text string) *session.Session {
	sess := session.New("s1")
	sess.ScamDetected = true
	sess.TurnCount = turn
	sess.Append(session.Message{Sender: session.SenderScammer, Text: text})
	return sess
}

func TestSelect_PersonaRules(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bank talk draws the retiree",
			text: "Your bank account will be blocked. Verify immediately.",
			want: persona.ConcernedElderly,
		},
		{
			name: "account plus jargon draws the low-tech target",
			text: "Update your account password within 24 hours",
			want: persona.TechUnsavvy,
		},
		{
			name: "account without jargon falls through",
			text: "Your account has an issue",
			want: persona.BusyProfessional,
		},
		{
			name: "default",
			text: "Congratulations! You have been selected for a prize",
			want: persona.BusyProfessional,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Select(scamSession(1, tt.text))
			if plan.PersonaID != tt.want {
				t.Errorf("persona = %q, want %q", plan.PersonaID, tt.want)
			}
		})
	}
}

func TestSelect_PersonaIsSticky(t *testing.T) {
	sess := scamSession(5, "Your bank account will be blocked")
	sess.Persona = persona.CuriousStudent

	if plan := Select(sess); plan.PersonaID != persona.CuriousStudent {
		t.Errorf("persona = %q, an already-set persona must never change", plan.PersonaID)
	}
}

func TestSelect_ObjectiveBrackets(t *testing.T) {
	tests := []struct {
		turn int
		want Kind
	}{
		{1, KindBuildConfusion},
		{2, KindBuildConfusion},
		{3, KindStallAndProbe},
		{6, KindStallAndProbe},
		{7, KindRequestDetails},
		{19, KindRequestDetails},
	}

	for _, tt := range tests {
		plan := Select(scamSession(tt.turn, "send the fee now"))
		if plan.Objective.Kind != tt.want {
			t.Errorf("turn %d: objective = %q, want %q", tt.turn, plan.Objective.Kind, tt.want)
		}
		if plan.Objective.Directive == "" {
			t.Errorf("turn %d: empty directive", tt.turn)
		}
	}
}

func TestSelect_DeflectWhenNotFlagged(t *testing.T) {
	sess := session.New("s1")
	sess.TurnCount = 1
	sess.Append(session.Message{Sender: session.SenderScammer, Text: "hi, lunch tomorrow?"})

	plan := Select(sess)
	if plan.Objective.Kind != KindDeflect {
		t.Errorf("objective = %q, want deflect for unflagged session", plan.Objective.Kind)
	}
}

func TestSelect_RefinesTowardMissingIntel(t *testing.T) {
	sess := scamSession(8, "pay the fee to release your parcel")
	sess.Intel.UPIIDs = []string{"fraud@paytm"}

	plan := Select(sess)
	if plan.Objective.Kind != KindRequestDetails {
		t.Fatalf("objective = %q", plan.Objective.Kind)
	}
	if !strings.Contains(plan.Objective.Directive, "phone number") {
		t.Errorf("directive should steer toward a contact vector, got %q", plan.Objective.Directive)
	}

	sess = scamSession(8, "pay the fee to release your parcel")
	sess.Intel.PhoneNumbers = []string{"+919876543210"}

	plan = Select(sess)
	if !strings.Contains(plan.Objective.Directive, "UPI") {
		t.Errorf("directive should steer toward a payment identifier, got %q", plan.Objective.Directive)
	}
}

func TestSelect_HintMirrorsTermination(t *testing.T) {
	sess := scamSession(4, "send it fast")
	sess.Intel.UPIIDs = []string{"fraud@paytm"}
	sess.Intel.PhoneNumbers = []string{"+919876543210"}

	plan := Select(sess)
	if plan.Hint.Action != termination.ActionTerminate || plan.Hint.Reason != session.ReasonSufficientIntel {
		t.Errorf("hint = %+v, want sufficiency signal", plan.Hint)
	}

	plan = Select(scamSession(4, "send it fast"))
	if plan.Hint.Action != termination.ActionContinue {
		t.Errorf("hint = %+v, want continue", plan.Hint)
	}
}
