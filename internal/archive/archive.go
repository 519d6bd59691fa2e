package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/lyrebird/internal/session"
)

// Archive persists final reports to Postgres so they survive process
// restarts and stay queryable after delivery to the central endpoint.
type Archive struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Archive, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Archive{pool: pool}, nil
}

func (a *Archive) Close() {
	a.pool.Close()
}

// EnsureSchema creates the reports table when it does not exist yet.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS honeypot_reports (
			id UUID PRIMARY KEY,
			session_id TEXT NOT NULL,
			scam_detected BOOLEAN NOT NULL,
			termination_reason TEXT NOT NULL,
			turn_count INT NOT NULL,
			total_messages INT NOT NULL,
			intelligence JSONB NOT NULL,
			transcript JSONB NOT NULL,
			agent_notes TEXT NOT NULL DEFAULT '',
			delivered BOOLEAN NOT NULL DEFAULT false,
			ended_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create reports table: %w", err)
	}

	_, err = a.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS honeypot_reports_session_idx ON honeypot_reports (session_id)`)
	if err != nil {
		return fmt.Errorf("create session index: %w", err)
	}
	return nil
}

// SaveReport writes one report row. delivered records whether the central
// endpoint accepted the report when it was first sent.
func (a *Archive) SaveReport(ctx context.Context, report *session.FinalReport, delivered bool) error {
	intelJSON, err := json.Marshal(report.Intelligence)
	if err != nil {
		return fmt.Errorf("marshal intelligence: %w", err)
	}
	transcriptJSON, err := json.Marshal(report.Transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	_, err = a.pool.Exec(ctx, `
		INSERT INTO honeypot_reports (id, session_id, scam_detected, termination_reason, turn_count, total_messages, intelligence, transcript, agent_notes, delivered, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		report.ReportID, report.SessionID, report.ScamDetected, report.TerminationReason,
		report.TurnCount, report.TotalMessages, intelJSON, transcriptJSON,
		report.AgentNotes, delivered, report.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ReportRow is the archived view of a final report, without the transcript.
type ReportRow struct {
	ID                uuid.UUID                  `json:"reportId"`
	SessionID         string                     `json:"sessionId"`
	ScamDetected      bool                       `json:"scamDetected"`
	TerminationReason string                     `json:"terminationReason"`
	TurnCount         int                        `json:"turnCount"`
	TotalMessages     int                        `json:"totalMessagesExchanged"`
	Intelligence      session.ReportIntelligence `json:"extractedIntelligence"`
	AgentNotes        string                     `json:"agentNotes"`
	Delivered         bool                       `json:"delivered"`
	EndedAt           time.Time                  `json:"endedAt"`
}

// RecentReports returns the newest reports, most recent first.
func (a *Archive) RecentReports(ctx context.Context, limit int) ([]ReportRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := a.pool.Query(ctx, `
		SELECT id, session_id, scam_detected, termination_reason, turn_count, total_messages, intelligence, agent_notes, delivered, ended_at
		FROM honeypot_reports
		ORDER BY ended_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var r ReportRow
		var intelJSON []byte
		err := rows.Scan(&r.ID, &r.SessionID, &r.ScamDetected, &r.TerminationReason,
			&r.TurnCount, &r.TotalMessages, &intelJSON, &r.AgentNotes, &r.Delivered, &r.EndedAt)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if err := json.Unmarshal(intelJSON, &r.Intelligence); err != nil {
			return nil, fmt.Errorf("decode intelligence: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}
