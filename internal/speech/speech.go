// Package speech drives client-side audio: sequential, cancellable playback
// of AI responses and continuous voice capture feeding the pending user
// input. Both controllers run against local platform services and stay
// responsive regardless of in-flight network calls elsewhere.
package speech

import (
	"context"
	"errors"
)

// Voice identifies a synthesis voice. Name is implementation-specific (for
// Deepgram it is the aura model id); Language is a BCP-47 tag.
type Voice struct {
	Name     string
	Language string
}

// Synthesizer speaks one sentence of text. Speak blocks until the utterance
// has been fully delivered, the context is cancelled, or synthesis fails.
// A zero Voice selects the implementation default.
type Synthesizer interface {
	Speak(ctx context.Context, text string, voice Voice) error
	Voices() []Voice
}

// Recognizer is a continuous speech-to-text session. Transcripts yields the
// running best transcript for the open session; each value replaces the
// previous one in full.
type Recognizer interface {
	Connect(languageTag string) error
	Transcripts() <-chan string
	Errs() <-chan error
	Close() error
}

// AudioSink consumes synthesized PCM and performs delivery to an output
// device. Reset drops any queued audio immediately (playback preemption).
type AudioSink interface {
	WritePCM(pcm []byte)
	Reset()
}

// ErrCaptureUnavailable means no speech recognition capability exists on
// this platform; voice input degrades to manual entry.
var ErrCaptureUnavailable = errors.New("speech: capture unavailable")

// NopSink discards audio; used when no output device is available.
type NopSink struct{}

func (NopSink) WritePCM(_ []byte) {}
func (NopSink) Reset()            {}
