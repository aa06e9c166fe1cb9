package debate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakePipeline struct {
	reply    string
	genErr   error
	score    int
	scoreErr error
	// when set, GenerateTurn blocks until release is closed
	release chan struct{}
}

func (f *fakePipeline) GenerateTurn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return TurnResponse{}, ctx.Err()
		}
	}
	if f.genErr != nil {
		return TurnResponse{}, f.genErr
	}
	return TurnResponse{AIResponseText: f.reply}, nil
}

func (f *fakePipeline) ScoreDebate(ctx context.Context, req ScoreRequest) (ScoreResult, error) {
	if f.scoreErr != nil {
		return ScoreResult{}, f.scoreErr
	}
	return ScoreResult{Score: f.score}, nil
}

func activeSession(t *testing.T, p Pipeline) *Session {
	t.Helper()
	s := NewSession(p, 0)
	if err := s.Begin("Remote work", For, LangEnglish); err != nil {
		t.Fatalf("begin: %v", err)
	}
	return s
}

func TestSession_TranscriptAlternates(t *testing.T) {
	s := activeSession(t, &fakePipeline{reply: "Counterpoint."})
	for i := 0; i < 3; i++ {
		if _, err := s.SubmitArgument(context.Background(), fmt.Sprintf("argument %d", i)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	tr := s.Transcript()
	if len(tr) != 6 {
		t.Fatalf("expected 6 turns, got %d", len(tr))
	}
	for i, turn := range tr {
		want := User
		if i%2 == 1 {
			want = AI
		}
		if turn.Speaker != want {
			t.Fatalf("turn %d: got speaker %q want %q", i, turn.Speaker, want)
		}
	}
}

func TestSession_EmptyArgument(t *testing.T) {
	s := activeSession(t, &fakePipeline{reply: "x"})
	if _, err := s.SubmitArgument(context.Background(), "   \n"); !errors.Is(err, ErrEmptyArgument) {
		t.Fatalf("expected ErrEmptyArgument, got %v", err)
	}
	if len(s.Transcript()) != 0 {
		t.Fatalf("transcript must be unchanged on rejected submission")
	}
}

func TestSession_SecondSubmitWhileInFlight(t *testing.T) {
	p := &fakePipeline{reply: "slow reply", release: make(chan struct{})}
	s := activeSession(t, p)

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitArgument(context.Background(), "first")
		done <- err
	}()

	// Wait until the first call is actually in flight.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		inFlight := s.inFlight
		s.mu.Unlock()
		if inFlight {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := s.SubmitArgument(context.Background(), "second"); !errors.Is(err, ErrTurnInProgress) {
		t.Fatalf("expected ErrTurnInProgress, got %v", err)
	}
	if len(s.Transcript()) != 0 {
		t.Fatalf("transcript must stay empty until the first turn resolves")
	}

	close(p.release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if got := len(s.Transcript()); got != 2 {
		t.Fatalf("expected 2 turns after first turn resolves, got %d", got)
	}
}

func TestSession_GenerateErrorLeavesTranscript(t *testing.T) {
	s := activeSession(t, &fakePipeline{genErr: errors.New("boom")})
	if _, err := s.SubmitArgument(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error")
	}
	if len(s.Transcript()) != 0 {
		t.Fatalf("transcript must be unchanged on pipeline error")
	}
	if s.Phase() != Active {
		t.Fatalf("phase must remain active")
	}
}

func TestSession_EndDebateAndRetry(t *testing.T) {
	p := &fakePipeline{reply: "r", scoreErr: errors.New("judge offline")}
	s := activeSession(t, p)
	if _, err := s.SubmitArgument(context.Background(), "opening"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := s.EndDebate(context.Background()); err == nil {
		t.Fatalf("expected scoring failure")
	}
	if s.Phase() != Active {
		t.Fatalf("failed scoring must not leave Active, got %s", s.Phase())
	}
	if got := len(s.Transcript()); got != 2 {
		t.Fatalf("failed scoring corrupted transcript: %d turns", got)
	}

	p.scoreErr = nil
	p.score = 73
	score, err := s.EndDebate(context.Background())
	if err != nil {
		t.Fatalf("retry end: %v", err)
	}
	if score != 73 {
		t.Fatalf("got score %d want 73", score)
	}
	if s.Phase() != Ended {
		t.Fatalf("expected Ended, got %s", s.Phase())
	}
	if got, ok := s.Score(); !ok || got != 73 {
		t.Fatalf("stored score: %d %v", got, ok)
	}
}

func TestSession_ResetFromEnded(t *testing.T) {
	p := &fakePipeline{reply: "r", score: 55}
	s := activeSession(t, p)
	for i := 0; i < 2; i++ {
		if _, err := s.SubmitArgument(context.Background(), "arg"); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if _, err := s.EndDebate(context.Background()); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.Phase() != Setup {
		t.Fatalf("expected Setup after reset, got %s", s.Phase())
	}
	if len(s.Transcript()) != 0 {
		t.Fatalf("transcript must be empty after reset")
	}
	if _, ok := s.Score(); ok {
		t.Fatalf("score must be cleared after reset")
	}
	// The same session can host a fresh debate.
	if err := s.Begin("New topic", Against, LangHindi); err != nil {
		t.Fatalf("begin after reset: %v", err)
	}
}

func TestSession_ResetOnlyFromEnded(t *testing.T) {
	s := activeSession(t, &fakePipeline{})
	if err := s.Reset(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
}

func TestSession_SubmitBeforeBegin(t *testing.T) {
	s := NewSession(&fakePipeline{reply: "x"}, 0)
	if _, err := s.SubmitArgument(context.Background(), "hi"); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
}

func TestStance_Opponent(t *testing.T) {
	if For.Opponent() != Against || Against.Opponent() != For {
		t.Fatalf("opponent mapping wrong")
	}
}

func TestSpeechTag(t *testing.T) {
	if SpeechTag(LangEnglish) != "en-US" {
		t.Fatalf("en mapping")
	}
	if SpeechTag(LangHindi) != "hi-IN" {
		t.Fatalf("hi mapping")
	}
	if SpeechTag("fr") != "en-US" {
		t.Fatalf("unknown language must fall back to en-US")
	}
}
