package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordingSynth records each utterance after a small synthesis delay; a
// cancelled context means the utterance never became audible.
type recordingSynth struct {
	mu     sync.Mutex
	spoken []string
	voices []Voice
	picked []Voice
	delay  time.Duration
	failOn string
}

func (s *recordingSynth) Speak(ctx context.Context, text string, voice Voice) error {
	delay := s.delay
	if delay == 0 {
		delay = 10 * time.Millisecond
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
	}
	if s.failOn != "" && text == s.failOn {
		return errors.New("synthesis blew up")
	}
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.picked = append(s.picked, voice)
	s.mu.Unlock()
	return nil
}

func (s *recordingSynth) Voices() []Voice { return s.voices }

func (s *recordingSynth) spokenCopy() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func waitIdle(t *testing.T, c *PlaybackController) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !c.Speaking() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("playback never went idle")
}

func TestPlayback_SpeaksSentencesInOrder(t *testing.T) {
	synth := &recordingSynth{}
	c := NewPlaybackController(synth)
	c.Play("First sentence. Second sentence. Third.", "en")
	waitIdle(t, c)

	want := []string{"First sentence", "Second sentence", "Third"}
	got := synth.spokenCopy()
	if len(got) != len(want) {
		t.Fatalf("spoken %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d: got %q want %q", i, got[i], want[i])
		}
	}
	cursor, length := c.Position()
	if cursor != 3 || length != 3 {
		t.Fatalf("expected exhausted queue 3/3, got %d/%d", cursor, length)
	}
}

func TestPlayback_NewPlayPreemptsPrior(t *testing.T) {
	synth := &recordingSynth{delay: 30 * time.Millisecond}
	c := NewPlaybackController(synth)
	c.Play("Old one. Old two.", "en")
	c.Play("New one. New two.", "en")
	waitIdle(t, c)

	got := synth.spokenCopy()
	if len(got) != 2 {
		t.Fatalf("expected only the new sentences, got %v", got)
	}
	for _, s := range got {
		if s == "Old one" || s == "Old two" {
			t.Fatalf("preempted sentence became audible: %v", got)
		}
	}
}

func TestPlayback_StopCancelsAndClears(t *testing.T) {
	synth := &recordingSynth{delay: 50 * time.Millisecond}
	c := NewPlaybackController(synth)
	c.Play("A very long sentence. And another.", "en")
	c.Stop()
	// Idempotent.
	c.Stop()

	if c.Speaking() {
		t.Fatalf("expected speaking=false after stop")
	}
	cursor, length := c.Position()
	if cursor != 0 || length != 0 {
		t.Fatalf("expected cleared queue, got %d/%d", cursor, length)
	}
	time.Sleep(80 * time.Millisecond)
	if got := synth.spokenCopy(); len(got) != 0 {
		t.Fatalf("stopped playback still spoke: %v", got)
	}
}

func TestPlayback_SynthesisErrorAbortsQueue(t *testing.T) {
	synth := &recordingSynth{failOn: "Second"}
	c := NewPlaybackController(synth)
	c.Play("First. Second. Third.", "en")
	waitIdle(t, c)

	got := synth.spokenCopy()
	if len(got) != 1 || got[0] != "First" {
		t.Fatalf("expected only %q before the error, got %v", "First", got)
	}
	if _, length := c.Position(); length != 0 {
		t.Fatalf("queue must be cleared after synthesis error")
	}
}

func TestPlayback_VoiceSelection(t *testing.T) {
	voices := []Voice{
		{Name: "thalia", Language: "en-US"},
		{Name: "kiran", Language: "hi-IN"},
	}
	synth := &recordingSynth{voices: voices}
	c := NewPlaybackController(synth)

	c.Play("Hello.", "en")
	waitIdle(t, c)
	c.Play("Namaste.", "hi")
	waitIdle(t, c)
	c.Play("Bonjour.", "fr")
	waitIdle(t, c)

	synth.mu.Lock()
	defer synth.mu.Unlock()
	if len(synth.picked) != 3 {
		t.Fatalf("expected 3 utterances, got %d", len(synth.picked))
	}
	if synth.picked[0].Name != "thalia" {
		t.Fatalf("en debate should pick en-US voice, got %+v", synth.picked[0])
	}
	if synth.picked[1].Name != "kiran" {
		t.Fatalf("hi debate should pick hi-IN voice, got %+v", synth.picked[1])
	}
	// Unknown tags map to en-US, which still matches.
	if synth.picked[2].Name != "thalia" {
		t.Fatalf("fallback voice: got %+v", synth.picked[2])
	}
}

func TestPlayback_NoSynthesizerIsNoop(t *testing.T) {
	c := NewPlaybackController(nil)
	c.Play("Anything.", "en")
	if c.Speaking() {
		t.Fatalf("nil synthesizer must not mark speaking")
	}
}

func TestPlayback_EmptyTextIsNoop(t *testing.T) {
	synth := &recordingSynth{}
	c := NewPlaybackController(synth)
	c.Play("   ", "en")
	if c.Speaking() {
		t.Fatalf("blank text must not mark speaking")
	}
}

func TestPickVoice_FallsBackToDefault(t *testing.T) {
	v := pickVoice([]Voice{{Name: "a", Language: "en-US"}}, "hi-IN")
	if v != (Voice{}) {
		t.Fatalf("expected zero voice fallback, got %+v", v)
	}
}
