package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MikeSquared-Agency/lyrebird/internal/archive"
	"github.com/MikeSquared-Agency/lyrebird/internal/classifier"
	"github.com/MikeSquared-Agency/lyrebird/internal/composer"
	"github.com/MikeSquared-Agency/lyrebird/internal/hermes"
	"github.com/MikeSquared-Agency/lyrebird/internal/intel"
	"github.com/MikeSquared-Agency/lyrebird/internal/language"
	"github.com/MikeSquared-Agency/lyrebird/internal/persona"
	"github.com/MikeSquared-Agency/lyrebird/internal/reporter"
	"github.com/MikeSquared-Agency/lyrebird/internal/session"
	"github.com/MikeSquared-Agency/lyrebird/internal/store"
	"github.com/MikeSquared-Agency/lyrebird/internal/strategy"
	"github.com/MikeSquared-Agency/lyrebird/internal/termination"
)

// ErrInvalidRequest flags malformed turn input: a missing session id or a
// message not sent by the scammer side.
var ErrInvalidRequest = errors.New("invalid turn request")

// Engine orchestrates the per-message pipeline: classify, strategize,
// compose, extract, decide. It owns all session mutation; collaborators are
// pure or side-effect-only.
type Engine struct {
	store      store.Store
	classifier *classifier.Classifier
	composer   *composer.Composer
	reporter   *reporter.Reporter
	archive    *archive.Archive
	hermes     *hermes.Client
	logger     *slog.Logger
	locks      *lockRegistry
	reports    atomic.Int64
}

// New wires the engine. reporter, archive, and hermes may each be nil, in
// which case the corresponding side effect is skipped.
func New(s store.Store, cl *classifier.Classifier, co *composer.Composer, rep *reporter.Reporter, arc *archive.Archive, h *hermes.Client, logger *slog.Logger) *Engine {
	return &Engine{
		store:      s,
		classifier: cl,
		composer:   co,
		reporter:   rep,
		archive:    arc,
		hermes:     h,
		logger:     logger,
		locks:      newLockRegistry(),
	}
}

// TurnInput is one inbound scammer message plus the context the transport
// supplies alongside it. History and the metadata hints only matter for
// sessions not seen before; afterwards the stored record wins.
type TurnInput struct {
	SessionID string
	Message   session.Message
	History   []session.Message
	Channel   string
	Language  string
}

// TurnResult is everything one processed message produced.
type TurnResult struct {
	Session         *session.Session
	Reply           string
	FromFallback    bool
	Verdict         classifier.Verdict
	Decision        termination.Decision
	Report          *session.FinalReport
	ReportDelivered bool
}

// ProcessMessage runs one scammer message through the pipeline and returns
// the composed reply plus the turn's outcome. Turns for the same session are
// serialized; the session record is published atomically at the end of the
// turn, so a failed or cancelled turn leaves no partial state behind.
func (e *Engine) ProcessMessage(ctx context.Context, in TurnInput) (*TurnResult, error) {
	if in.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidRequest)
	}
	msg := in.Message
	if msg.Sender != session.SenderScammer {
		return nil, fmt.Errorf("%w: message sender must be %q", ErrInvalidRequest, session.SenderScammer)
	}

	release := e.locks.acquire(in.SessionID)
	defer release()

	stored, err := e.store.Get(ctx, in.SessionID)
	created := false
	switch {
	case errors.Is(err, store.ErrNotFound):
		stored = session.New(in.SessionID)
		stored.Channel = in.Channel
		stored.SeedHistory(in.History)
		for _, m := range in.History {
			if m.Sender == session.SenderScammer {
				stored.Intel = intel.Extract(m.Text, stored.Intel)
			}
		}
		created = true
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	}

	if stored.Status == session.StatusTerminated {
		return nil, session.ErrAlreadyTerminated
	}

	work := stored.Clone()
	work.Append(msg)
	work.TurnCount++

	if work.Language == "" {
		work.Language = in.Language
	}
	if work.Language == "" {
		work.Language = language.Detect(msg.Text)
	}

	// Classify the new message. The scam flag latches; confidence tracks the
	// latest verdict, not a running maximum.
	verdict := e.classifier.Classify(ctx, work, msg.Text)
	if verdict.IsScam {
		work.ScamDetected = true
	}
	work.ScamConfidence = verdict.Confidence

	// Pick persona and objective.
	plan := strategy.Select(work)
	if work.Persona == "" {
		work.Persona = plan.PersonaID
	}
	p, err := persona.Get(work.Persona)
	if err != nil {
		e.logger.Warn("stored persona missing from catalog, using fallback",
			"session_id", in.SessionID,
			"persona", work.Persona,
		)
		p, _ = persona.Get(persona.Fallback)
	}

	// Compose the reply in character.
	reply, fromFallback := e.composer.Compose(ctx, work, p, plan.Objective)

	// Harvest identifiers from the new message.
	work.Intel = intel.Extract(msg.Text, work.Intel)

	// Decide whether the engagement continues.
	decision := termination.Decide(work)

	work.Append(session.Message{
		Sender:    session.SenderHoneypot,
		Text:      reply,
		Timestamp: time.Now().Unix(),
	})
	note := fmt.Sprintf("turn %d: objective=%s source=%s confidence=%.2f intel=%d",
		work.TurnCount, plan.Objective.Kind, verdict.Source, verdict.Confidence, work.Intel.Count())
	if plan.Hint.Action == termination.ActionTerminate {
		note += " hint=" + string(plan.Hint.Reason)
	}
	work.Notes = append(work.Notes, note)
	if verdict.Rationale != "" {
		work.Notes = append(work.Notes, fmt.Sprintf("turn %d model rationale: %s", work.TurnCount, verdict.Rationale))
	}

	if decision.Action == termination.ActionTerminate {
		work.Status = session.StatusTerminated
		work.TerminationReason = decision.Reason
	}

	// A cancelled request commits nothing.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if created {
		if err := e.store.Create(ctx, work); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	} else {
		if err := e.store.Update(ctx, work); err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}
	}

	e.logger.Info("turn processed",
		"session_id", in.SessionID,
		"turn", work.TurnCount,
		"persona", work.Persona,
		"objective", string(plan.Objective.Kind),
		"verdict_source", verdict.Source,
		"scam_detected", work.ScamDetected,
		"intel_count", work.Intel.Count(),
		"hint", string(plan.Hint.Reason),
		"action", string(decision.Action),
	)

	result := &TurnResult{
		Session:      work,
		Reply:        reply,
		FromFallback: fromFallback,
		Verdict:      verdict,
		Decision:     decision,
	}

	if created && e.hermes != nil {
		if err := e.hermes.Publish(hermes.SubjectSessionOpened, hermes.NewSessionEvent(work)); err != nil {
			e.logger.Error("failed to publish session opened", "session_id", in.SessionID, "error", err)
		}
	}

	if decision.Action == termination.ActionTerminate {
		e.finishSession(ctx, work, result)
	}

	return result, nil
}

// finishSession handles the post-commit side of termination: build the final
// report, deliver it, archive it, announce the closure. All of it is
// best-effort; the session is already terminated either way.
func (e *Engine) finishSession(ctx context.Context, work *session.Session, result *TurnResult) {
	report := session.BuildReport(work)
	result.Report = report
	e.reports.Add(1)

	delivered := false
	if e.reporter != nil {
		if err := e.reporter.Deliver(ctx, report); err != nil {
			e.logger.Warn("report delivery failed",
				"session_id", work.ID,
				"report_id", report.ReportID,
				"error", err,
			)
		} else {
			delivered = true
		}
	}
	result.ReportDelivered = delivered

	if e.archive != nil {
		if err := e.archive.SaveReport(ctx, report, delivered); err != nil {
			e.logger.Error("report archive failed", "session_id", work.ID, "error", err)
		}
	}

	if e.hermes != nil {
		if err := e.hermes.Publish(hermes.SubjectSessionClosed, hermes.NewSessionEvent(work)); err != nil {
			e.logger.Error("failed to publish session closed", "session_id", work.ID, "error", err)
		}
	}

	e.logger.Info("session terminated",
		"session_id", work.ID,
		"reason", string(work.TerminationReason),
		"turns", work.TurnCount,
		"intel_count", work.Intel.Count(),
		"report_delivered", delivered,
	)
}

// GetSession returns the stored session record.
func (e *Engine) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return e.store.Get(ctx, id)
}

// Counts reports active and terminated session totals.
func (e *Engine) Counts(ctx context.Context) (active, terminated int, err error) {
	return e.store.Count(ctx)
}

// ReportsEmitted returns how many final reports have been built since start.
func (e *Engine) ReportsEmitted() int64 {
	return e.reports.Load()
}

// ModelAssisted reports whether the classifier can consult a model.
func (e *Engine) ModelAssisted() bool {
	return e.classifier.ModelAssisted()
}
