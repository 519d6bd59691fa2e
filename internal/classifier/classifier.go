package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/lyrebird/internal/groq"
	"github.com/MikeSquared-Agency/lyrebird/internal/intel"
	"github.com/MikeSquared-Agency/lyrebird/internal/session"
)

// Verdict sources, recorded so a reviewer can tell how each call was decided.
const (
	SourceHeuristic = "heuristic"
	SourceModel     = "model"
	SourceFallback  = "fallback"
)

const (
	// decisiveScore is the heuristic score at which a message is ruled a
	// scam without consulting the model.
	decisiveScore = 0.7
	// fallbackScore decides ambiguous messages when no model is available.
	fallbackScore = 0.5
)

var tacticWeights = map[string]float64{
	intel.TagUrgency:         0.25,
	intel.TagAuthority:       0.20,
	intel.TagThreat:          0.25,
	intel.TagPaymentLure:     0.20,
	intel.TagCredentialPhish: 0.30,
	intel.TagSuspicion:       0.15,
}

// Verdict is the outcome of classifying a single inbound message.
type Verdict struct {
	IsScam     bool
	Confidence float64
	Tactics    []string
	Source     string
	Rationale  string
}

// HeuristicScore sums the weights of the matched tactics, capped at 1.0.
func HeuristicScore(tactics []string) float64 {
	var score float64
	for _, tag := range tactics {
		score += tacticWeights[tag]
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

type Classifier struct {
	llm    *groq.Client
	model  string
	logger *slog.Logger
}

// New builds a classifier. llm may be nil, in which case ambiguous messages
// are decided by the keyword heuristic alone.
func New(llm *groq.Client, model string, logger *slog.Logger) *Classifier {
	return &Classifier{llm: llm, model: model, logger: logger}
}

// ModelAssisted reports whether ambiguous messages can consult the model.
func (c *Classifier) ModelAssisted() bool {
	return c.llm != nil
}

// Classify scores the latest scammer message. Clear cases are decided by the
// keyword heuristic; ambiguous ones are referred to the model when a client
// is configured. Classification never fails: on model absence or error the
// heuristic score decides alone and the verdict is marked as a fallback.
func (c *Classifier) Classify(ctx context.Context, sess *session.Session, text string) Verdict {
	tactics := intel.ScanTactics(text)
	score := HeuristicScore(tactics)

	if score >= decisiveScore {
		return Verdict{IsScam: true, Confidence: score, Tactics: tactics, Source: SourceHeuristic}
	}
	if len(tactics) == 0 {
		return Verdict{IsScam: false, Confidence: 0, Source: SourceHeuristic}
	}

	if c.llm == nil {
		return fallbackVerdict(score, tactics)
	}

	verdict, err := c.classifyWithModel(ctx, sess, text, tactics)
	if err != nil {
		c.logger.Warn("model classification failed, using heuristic fallback",
			"session_id", sess.ID,
			"error", err,
		)
		return fallbackVerdict(score, tactics)
	}
	return verdict
}

func fallbackVerdict(score float64, tactics []string) Verdict {
	return Verdict{
		IsScam:     score >= fallbackScore,
		Confidence: score,
		Tactics:    tactics,
		Source:     SourceFallback,
	}
}

type modelVerdict struct {
	IsScam     bool    `json:"is_scam"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

func (c *Classifier) classifyWithModel(ctx context.Context, sess *session.Session, text string, tactics []string) (Verdict, error) {
	prompt := fmt.Sprintf(classifyUserPrompt, transcriptTail(sess, 6), text, strings.Join(tactics, ", "))

	var resp modelVerdict
	err := c.llm.CompleteJSON(ctx, c.model, classifySystemPrompt, []groq.Message{
		{Role: "user", Content: prompt},
	}, 256, 0, &resp)
	if err != nil {
		return Verdict{}, fmt.Errorf("model classify: %w", err)
	}

	if resp.Confidence < 0 {
		resp.Confidence = 0
	}
	if resp.Confidence > 1 {
		resp.Confidence = 1
	}

	return Verdict{
		IsScam:     resp.IsScam,
		Confidence: resp.Confidence,
		Tactics:    tactics,
		Source:     SourceModel,
		Rationale:  resp.Rationale,
	}, nil
}

// transcriptTail renders the most recent n messages for model context.
func transcriptTail(sess *session.Session, n int) string {
	msgs := sess.Transcript
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(m.Sender)
		b.WriteString(": ")
		b.WriteString(m.Text)
		b.WriteString("\n")
	}
	return b.String()
}
