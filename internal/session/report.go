package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportIntelligence is the evaluator-facing view of the extracted record.
// Field names follow the evaluator's payload contract, not the internal one.
type ReportIntelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	PhishingLinks      []string `json:"phishingLinks"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// FinalReport is the payload handed to the reporting collaborator when a
// session terminates.
type FinalReport struct {
	ReportID          string             `json:"reportId"`
	SessionID         string             `json:"sessionId"`
	ScamDetected      bool               `json:"scamDetected"`
	TurnCount         int                `json:"turnCount"`
	TotalMessages     int                `json:"totalMessagesExchanged"`
	TerminationReason TerminationReason  `json:"terminationReason"`
	Intelligence      ReportIntelligence `json:"extractedIntelligence"`
	Transcript        []Message          `json:"transcript"`
	AgentNotes        string             `json:"agentNotes"`
	EndedAt           time.Time          `json:"endedAt"`
}

// BuildReport assembles the final report from a terminated session.
func BuildReport(s *Session) *FinalReport {
	return &FinalReport{
		ReportID:          uuid.NewString(),
		SessionID:         s.ID,
		ScamDetected:      s.ScamDetected,
		TurnCount:         s.TurnCount,
		TotalMessages:     len(s.Transcript),
		TerminationReason: s.TerminationReason,
		Intelligence: ReportIntelligence{
			BankAccounts:       orEmpty(s.Intel.BankAccounts),
			UPIIDs:             orEmpty(s.Intel.UPIIDs),
			PhoneNumbers:       orEmpty(s.Intel.PhoneNumbers),
			PhishingLinks:      orEmpty(s.Intel.URLs),
			SuspiciousKeywords: orEmpty(s.Intel.Tactics),
		},
		Transcript: append([]Message(nil), s.Transcript...),
		AgentNotes: strings.Join(s.Notes, " | "),
		EndedAt:    time.Now().UTC(),
	}
}

// orEmpty keeps the evaluator payload free of null arrays.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
