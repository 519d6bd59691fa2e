package composer

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"unicode"

	"github.com/MikeSquared-Agency/lyrebird/internal/groq"
	"github.com/MikeSquared-Agency/lyrebird/internal/language"
	"github.com/MikeSquared-Agency/lyrebird/internal/persona"
	"github.com/MikeSquared-Agency/lyrebird/internal/session"
	"github.com/MikeSquared-Agency/lyrebird/internal/strategy"
)

const (
	maxReplyChars        = 400
	defaultHistoryWindow = 6
	replyMaxTokens       = 200
	replyTemp            = 0.8
)

// neutralReply answers messages that were never flagged as a scam. It goes
// out as-is, without a model call.
const neutralReply = "Thank you for your message. I'll look into this."

// fallbackReplies covers generation failures. Indexed by turn so consecutive
// fallbacks do not repeat themselves.
var fallbackReplies = [4]string{
	"I'm not sure I understand. Could you explain more?",
	"This is confusing to me. Can you help me understand what I need to do?",
	"Okay, but I'm a bit worried. Is this really necessary?",
	"I want to help, but I need more information first.",
}

type Composer struct {
	llm    *groq.Client
	model  string
	window int
	logger *slog.Logger
}

// New builds a composer. llm may be nil, in which case every reply comes
// from the canned fallback rotation. window is how many transcript messages
// ride along in the prompt; zero or less takes the default.
func New(llm *groq.Client, model string, window int, logger *slog.Logger) *Composer {
	if window <= 0 {
		window = defaultHistoryWindow
	}
	return &Composer{llm: llm, model: model, window: window, logger: logger}
}

// Compose writes the honeypot's next reply in the given persona's voice.
// fromFallback reports whether the canned rotation was used instead of the
// model. A turn never fails here: any generation problem degrades to the
// fallback.
func (c *Composer) Compose(ctx context.Context, sess *session.Session, p persona.Persona, obj strategy.Objective) (string, bool) {
	if obj.Kind == strategy.KindDeflect {
		return neutralReply, false
	}
	if c.llm == nil {
		return fallbackReply(sess.TurnCount), true
	}

	reply, err := c.generate(ctx, sess, p, obj)
	if err != nil {
		c.logger.Warn("reply generation failed, using fallback",
			"session_id", sess.ID,
			"turn", sess.TurnCount,
			"error", err,
		)
		return fallbackReply(sess.TurnCount), true
	}

	reply = clamp(scrub(reply), maxReplyChars)
	if reply == "" {
		return fallbackReply(sess.TurnCount), true
	}
	return naturalize(sess.ID, sess.TurnCount, p, reply), false
}

func (c *Composer) generate(ctx context.Context, sess *session.Session, p persona.Persona, obj strategy.Objective) (string, error) {
	system := fmt.Sprintf(composeSystemPrompt,
		p.Name,
		p.Background,
		p.Anxiety,
		p.TechLiteracy,
		p.Verbosity,
		p.SentenceLength,
		yesNo(p.FillerWords),
		strings.Join(p.StyleNotes, "; "),
		obj.Directive,
	)
	if sess.Language != "" && sess.Language != "en" {
		system += fmt.Sprintf("\n- Write the reply in %s, the language the other person is using.", language.Name(sess.Language))
	}
	user := fmt.Sprintf(composeUserPrompt, transcriptTail(sess, c.window), p.Name)

	return c.llm.Complete(ctx, c.model, system, []groq.Message{
		{Role: "user", Content: user},
	}, replyMaxTokens, replyTemp)
}

func fallbackReply(turn int) string {
	if turn < 0 {
		turn = 0
	}
	return fallbackReplies[turn%len(fallbackReplies)]
}

var leakedPrefixes = []string{"response:", "agent:", "reply:", "here is", "here's"}

// scrub removes framing artifacts models sometimes wrap replies in.
func scrub(reply string) string {
	out := strings.TrimSpace(reply)
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(out)
		for _, prefix := range leakedPrefixes {
			if strings.HasPrefix(lower, prefix) {
				out = strings.TrimSpace(out[len(prefix):])
				changed = true
				break
			}
		}
	}
	if len(out) >= 2 && out[0] == '"' && out[len(out)-1] == '"' {
		out = strings.TrimSpace(out[1 : len(out)-1])
	}
	return out
}

// clamp cuts the reply at limit runes, backing up to a word boundary so the
// message does not end mid-word.
func clamp(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

// naturalize applies small persona-dependent perturbations, seeded from the
// session id and turn so replays produce identical output.
func naturalize(sessionID string, turn int, p persona.Persona, reply string) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s:%d", sessionID, turn)
	seed := h.Sum32()

	if p.TyposAllowed && seed%3 == 0 {
		runes := []rune(reply)
		if len(runes) > 0 && unicode.IsUpper(runes[0]) {
			runes[0] = unicode.ToLower(runes[0])
			reply = string(runes)
		}
	}
	if p.Anxiety == "high" && seed%4 == 0 {
		reply += " ..."
	}
	return reply
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

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
