package speech

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/websocket/interfaces"
	clientinterfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces/v1"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
)

const (
	defaultSpeakModel = "aura-2-thalia-en"
	speakSampleRate   = 48000
	speakEncoding     = "linear16"
	// speakIdleWindow ends an utterance once audio stops arriving.
	speakIdleWindow = 400 * time.Millisecond
	// speakDeadline caps a single utterance outright.
	speakDeadline = 12 * time.Second
)

// DeepgramSynthesizer speaks sentences through the Deepgram speak WebSocket
// API, delivering 48kHz PCM to an AudioSink. One Speak call handles one
// utterance; callers serialize them.
type DeepgramSynthesizer struct {
	apiKey string
	sink   AudioSink
}

// NewDeepgramSynthesizer builds a synthesizer. A nil sink discards audio.
func NewDeepgramSynthesizer(apiKey string, sink AudioSink) *DeepgramSynthesizer {
	if sink == nil {
		sink = NopSink{}
	}
	return &DeepgramSynthesizer{apiKey: apiKey, sink: sink}
}

// Voices lists the aura models the synthesizer can select between. All are
// English; a Hindi debate therefore exercises the default-voice fallback.
func (d *DeepgramSynthesizer) Voices() []Voice {
	return []Voice{
		{Name: "aura-2-thalia-en", Language: "en-US"},
		{Name: "aura-2-orion-en", Language: "en-US"},
	}
}

// Speak synthesizes one sentence and blocks until its audio has been fully
// delivered, ctx is cancelled, or synthesis fails. Cancellation drops any
// queued audio so preemption is immediate.
func (d *DeepgramSynthesizer) Speak(ctx context.Context, text string, voice Voice) error {
	if d.apiKey == "" {
		return fmt.Errorf("deepgram: API key missing")
	}
	if text == "" {
		return nil
	}
	model := voice.Name
	if model == "" {
		model = defaultSpeakModel
	}

	options := &clientinterfaces.WSSpeakOptions{
		Model:      model,
		Encoding:   speakEncoding,
		SampleRate: speakSampleRate,
	}

	var lastRecvUnix int64
	var seenAudio int32
	cb := &speakCallback{onBinary: func(data []byte) error {
		if len(data) == 0 {
			return nil
		}
		atomic.StoreInt64(&lastRecvUnix, time.Now().UnixNano())
		atomic.StoreInt32(&seenAudio, 1)
		if ctx.Err() == nil {
			b := make([]byte, len(data))
			copy(b, data)
			d.sink.WritePCM(b)
		}
		return nil
	}}

	dg, err := speak.NewWSUsingCallback(ctx, d.apiKey, &clientinterfaces.ClientOptions{}, options, cb)
	if err != nil {
		return fmt.Errorf("deepgram: create ws client: %w", err)
	}

	stopped := false
	stopClient := func() {
		if !stopped {
			stopped = true
			dg.Stop()
		}
	}
	defer stopClient()

	if ok := dg.Connect(); !ok {
		return fmt.Errorf("deepgram: connect failed")
	}
	if err := dg.SpeakWithText(text); err != nil {
		return fmt.Errorf("deepgram: speak text: %w", err)
	}
	if err := dg.Flush(); err != nil {
		log.Printf("deepgram: flush error: %v", err)
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.Now().Add(speakDeadline)
	for {
		select {
		case <-ctx.Done():
			stopClient()
			d.sink.Reset()
			return ctx.Err()
		case <-ticker.C:
			if atomic.LoadInt32(&seenAudio) == 1 {
				last := time.Unix(0, atomic.LoadInt64(&lastRecvUnix))
				if time.Since(last) > speakIdleWindow {
					return nil
				}
			}
			if time.Now().After(deadline) {
				if atomic.LoadInt32(&seenAudio) == 0 {
					return fmt.Errorf("deepgram: no audio before deadline")
				}
				return nil
			}
		}
	}
}

type speakCallback struct{ onBinary func([]byte) error }

func (s *speakCallback) Open(*msginterfaces.OpenResponse) error         { return nil }
func (s *speakCallback) Metadata(*msginterfaces.MetadataResponse) error { return nil }
func (s *speakCallback) Flush(*msginterfaces.FlushedResponse) error     { return nil }
func (s *speakCallback) Clear(*msginterfaces.ClearedResponse) error     { return nil }
func (s *speakCallback) Close(*msginterfaces.CloseResponse) error       { return nil }
func (s *speakCallback) Warning(*msginterfaces.WarningResponse) error   { return nil }
func (s *speakCallback) Error(*msginterfaces.ErrorResponse) error       { return nil }
func (s *speakCallback) UnhandledEvent([]byte) error                    { return nil }
func (s *speakCallback) Binary(byMsg []byte) error {
	if s.onBinary != nil {
		return s.onBinary(byMsg)
	}
	return nil
}
