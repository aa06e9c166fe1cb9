// Package pipeline turns a user argument into an AI counter-argument and
// grades a finished debate. Each call is self-contained; the pipeline keeps
// no per-debate state, so any number of sessions can share one instance.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/sutarpriyanshu/ArguMentor/internal/debate"
	"github.com/sutarpriyanshu/ArguMentor/internal/translate"
)

// maxResponseWords bounds every AI reply, whitespace-token counted.
const maxResponseWords = 100

var (
	// ErrGeneration means the model call failed or returned nothing.
	ErrGeneration = errors.New("pipeline: generation failed")
	// ErrScoreParse means the model output held no integer in [0,100].
	ErrScoreParse = errors.New("pipeline: no usable score in model output")
)

// Generator produces one completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Pipeline implements debate.Pipeline against a generative model and an
// optional translator. A nil translator behaves like a translator that
// always fails, which the pipeline absorbs by keeping the original text.
type Pipeline struct {
	gen Generator
	tr  translate.Translator
}

// New builds a pipeline. tr may be nil.
func New(gen Generator, tr translate.Translator) *Pipeline {
	return &Pipeline{gen: gen, tr: tr}
}

// toEnglish best-effort translates text to English; failure keeps the
// original text and is never surfaced past a log line.
func (p *Pipeline) toEnglish(ctx context.Context, text string) string {
	if p.tr == nil {
		return text
	}
	out, err := p.tr.Translate(ctx, text, debate.LangEnglish)
	if err != nil {
		log.Printf("pipeline: translate to en failed, keeping original: %v", err)
		return text
	}
	return out
}

// GenerateTurn runs the full turn cycle: translate the argument to English
// when needed, prompt the model for a ~100 word counter-argument, truncate,
// and translate the reply to Hindi when the request asked for Hindi and the
// model answered without any Devanagari.
func (p *Pipeline) GenerateTurn(ctx context.Context, req debate.TurnRequest) (debate.TurnResponse, error) {
	argument := req.UserArgument
	if req.Language != debate.LangEnglish {
		argument = p.toEnglish(ctx, argument)
	}

	prompt := turnPrompt(req.Topic, req.UserStance, argument, req.Language)
	raw, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return debate.TurnResponse{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	text := truncateWords(strings.TrimSpace(raw), maxResponseWords)
	if text == "" {
		return debate.TurnResponse{}, fmt.Errorf("%w: empty model output", ErrGeneration)
	}

	// Script-presence check only: a reply with any Devanagari at all is
	// assumed to already be Hindi. Mixed-script replies stay untranslated.
	if req.Language == debate.LangHindi && !containsDevanagari(text) {
		if p.tr != nil {
			translated, terr := p.tr.Translate(ctx, text, debate.LangHindi)
			if terr != nil {
				log.Printf("pipeline: translate to hi failed, returning english: %v", terr)
			} else {
				text = translated
			}
		}
	}
	return debate.TurnResponse{AIResponseText: text}, nil
}

// ScoreDebate grades the user's side of the transcript. Non-English
// transcripts are translated entry by entry concurrently; a single entry's
// translation failure keeps that entry's original text and does not abort
// the others.
func (p *Pipeline) ScoreDebate(ctx context.Context, req debate.ScoreRequest) (debate.ScoreResult, error) {
	entries := append([]debate.Turn(nil), req.Transcript...)
	if req.Language != debate.LangEnglish {
		var wg sync.WaitGroup
		for i := range entries {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				entries[i].Text = p.toEnglish(ctx, entries[i].Text)
			}(i)
		}
		wg.Wait()
	}

	raw, err := p.gen.Generate(ctx, scorePrompt(req.Topic, req.UserStance, entries))
	if err != nil {
		return debate.ScoreResult{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	score, ok := parseScore(raw)
	if !ok {
		return debate.ScoreResult{}, fmt.Errorf("%w: %q", ErrScoreParse, strings.TrimSpace(raw))
	}
	return debate.ScoreResult{Score: score}, nil
}

func turnPrompt(topic string, userStance debate.Stance, argument, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "We are debating the topic: %q. You are arguing %s this topic.\n", topic, userStance.Opponent())
	fmt.Fprintf(&b, "The user, who is arguing %s the topic, said: %q\n", userStance, argument)
	fmt.Fprintf(&b, "Respond to their argument with a counterargument of about %d words.", maxResponseWords)
	if lang == debate.LangHindi {
		b.WriteString(" Please provide your response in Hindi.")
	}
	return b.String()
}

func scorePrompt(topic string, userStance debate.Stance, entries []debate.Turn) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate the following debate on the topic: %q.\n", topic)
	fmt.Fprintf(&b, "The user's stance was: %s.\n\nDebate history:\n", userStance)
	for _, e := range entries {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(string(e.Speaker)), e.Text)
	}
	b.WriteString("\nBased on the arguments presented, provide a score for the user's performance in the debate.\n")
	b.WriteString("Score should be between 0 and 100, where 0 is the lowest and 100 is the highest.\n")
	b.WriteString("Only return the numeric score, without any additional text.")
	return b.String()
}

// truncateWords keeps the first max whitespace-delimited tokens, appending
// "..." when anything was cut. Deterministic for a given input.
func truncateWords(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ") + "..."
}

// containsDevanagari reports whether any rune falls in U+0900..U+097F.
func containsDevanagari(text string) bool {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}

// parseScore scans whitespace tokens for the first integer in [0,100],
// tolerating surrounding punctuation like "87." or "Score: 87".
func parseScore(raw string) (int, bool) {
	for _, field := range strings.Fields(raw) {
		token := strings.Trim(field, ".,:;!%\"'()")
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		if n >= 0 && n <= 100 {
			return n, true
		}
	}
	return 0, false
}
