package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/lyrebird/internal/session"
)

// Reporter posts final session reports to the central collection endpoint.
type Reporter struct {
	url    string
	token  string
	client *http.Client
	logger *slog.Logger
}

func New(url, token string, timeout time.Duration, logger *slog.Logger) *Reporter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Reporter{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Deliver posts the report. Failures are the caller's to log and shrug off:
// the session is already terminated by the time this runs, and the report
// remains available through the archive.
func (r *Reporter) Deliver(ctx context.Context, report *session.FinalReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("report endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	r.logger.Info("final report delivered",
		"session_id", report.SessionID,
		"report_id", report.ReportID,
		"termination_reason", report.TerminationReason,
	)
	return nil
}
