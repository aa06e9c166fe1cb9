package debate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one debate: phase, transcript and score, driven through the
// Setup -> Active -> Ended lifecycle. All mutation goes through methods;
// the mutex keeps the transcript append-only and ordered even with
// concurrent callers. Sessions are independent values, so any number can
// run side by side against the same Pipeline.
type Session struct {
	id       string
	pipeline Pipeline
	timeout  time.Duration

	mu         sync.Mutex
	phase      Phase
	topic      string
	userStance Stance
	language   string
	transcript []Turn
	score      *int
	inFlight   bool
}

// NewSession creates a session in the Setup phase. timeout bounds each
// generate/score network call; zero means no deadline.
func NewSession(p Pipeline, timeout time.Duration) *Session {
	return &Session{id: uuid.NewString(), pipeline: p, timeout: timeout}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Topic returns the confirmed debate topic.
func (s *Session) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// Language returns the debate language code ("en" or "hi").
func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// Transcript returns a copy of the transcript so far.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Score returns the stored score and whether one exists.
func (s *Session) Score() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.score == nil {
		return 0, false
	}
	return *s.score, true
}

// Begin confirms topic and stance and moves Setup -> Active with an empty
// transcript. An unsupported language code falls back to English.
func (s *Session) Begin(topic string, stance Stance, language string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return fmt.Errorf("debate: topic must not be empty")
	}
	if !stance.Valid() {
		return fmt.Errorf("debate: stance must be %q or %q", For, Against)
	}
	if language != LangEnglish && language != LangHindi {
		language = LangEnglish
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Setup {
		return fmt.Errorf("%w: begin from %s", ErrWrongPhase, s.phase)
	}
	s.topic = topic
	s.userStance = stance
	s.language = language
	s.transcript = nil
	s.phase = Active
	return nil
}

// SubmitArgument sends one user argument through the pipeline and, on
// success, appends the user turn followed by the AI reply. At most one
// submission may be in flight; a concurrent call gets ErrTurnInProgress
// and the transcript is untouched. The returned Turn is the AI reply.
func (s *Session) SubmitArgument(ctx context.Context, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyArgument
	}

	s.mu.Lock()
	if s.phase != Active {
		s.mu.Unlock()
		return Turn{}, fmt.Errorf("%w: submit in %s", ErrWrongPhase, s.phase)
	}
	if s.inFlight {
		s.mu.Unlock()
		return Turn{}, ErrTurnInProgress
	}
	s.inFlight = true
	req := TurnRequest{
		Topic:        s.topic,
		UserStance:   s.userStance,
		UserArgument: text,
		Language:     s.language,
	}
	s.mu.Unlock()

	resp, err := s.callGenerate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		return Turn{}, err
	}
	aiTurn := Turn{Speaker: AI, Text: resp.AIResponseText}
	s.transcript = append(s.transcript, Turn{Speaker: User, Text: text}, aiTurn)
	return aiTurn, nil
}

func (s *Session) callGenerate(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.pipeline.GenerateTurn(ctx, req)
}

// EndDebate scores the transcript and moves Active -> Ended. On failure the
// session stays Active with the transcript unchanged, so the caller may
// simply invoke EndDebate again.
func (s *Session) EndDebate(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.phase != Active {
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: end in %s", ErrWrongPhase, s.phase)
	}
	if s.inFlight {
		s.mu.Unlock()
		return 0, ErrTurnInProgress
	}
	s.inFlight = true
	req := ScoreRequest{
		Topic:      s.topic,
		UserStance: s.userStance,
		Transcript: append([]Turn(nil), s.transcript...),
		Language:   s.language,
	}
	s.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	result, err := s.pipeline.ScoreDebate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		log.Printf("session %s: score failed (still active): %v", s.id, err)
		return 0, err
	}
	score := result.Score
	s.score = &score
	s.phase = Ended
	return score, nil
}

// Reset clears transcript and score and moves Ended -> Setup. It is the
// only reverse transition in the lifecycle.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Ended {
		return fmt.Errorf("%w: reset in %s", ErrWrongPhase, s.phase)
	}
	s.topic = ""
	s.userStance = ""
	s.language = ""
	s.transcript = nil
	s.score = nil
	s.phase = Setup
	return nil
}
