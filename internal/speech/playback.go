package speech

import (
	"context"
	"log"
	"sync"

	"github.com/sutarpriyanshu/ArguMentor/internal/debate"
	"github.com/sutarpriyanshu/ArguMentor/internal/segment"
)

// PlaybackController speaks a multi-sentence response one utterance at a
// time. State is a single tagged value: queue, cursor and the speaking flag,
// advanced only by sentence-completion and error events from the synthesis
// goroutine. Play and Stop are the only mutators; a later Play always
// preempts an earlier one, so two responses are never audible at once.
type PlaybackController struct {
	synth Synthesizer

	mu       sync.Mutex
	queue    []string
	cursor   int
	speaking bool
	cancel   context.CancelFunc
	gen      uint64
}

// NewPlaybackController wires a controller to a synthesizer. A nil
// synthesizer makes Play a logged no-op (platform without synthesis).
func NewPlaybackController(s Synthesizer) *PlaybackController {
	return &PlaybackController{synth: s}
}

// Play cancels any current utterance, rebuilds the queue from text and
// starts speaking the first sentence. language selects a matching synthesis
// voice; when none matches the implementation default is used.
func (c *PlaybackController) Play(text, language string) {
	if c.synth == nil {
		log.Printf("playback: no synthesizer available, skipping")
		return
	}
	queue := segment.Sentences(text)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	gen := c.gen
	c.queue = queue
	c.cursor = 0
	if len(queue) == 0 {
		c.speaking = false
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.speaking = true
	c.mu.Unlock()

	voice := pickVoice(c.synth.Voices(), debate.SpeechTag(language))
	go c.run(ctx, cancel, gen, queue, voice)
}

// run speaks the queue sequentially; exactly one synthesis call is in
// flight at any moment. Events from a preempted run are discarded by the
// generation check so a newer Play fully owns the state.
func (c *PlaybackController) run(ctx context.Context, cancel context.CancelFunc, gen uint64, queue []string, voice Voice) {
	defer cancel()
	for i, sentence := range queue {
		if ctx.Err() != nil {
			return
		}
		err := c.synth.Speak(ctx, sentence, voice)

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		if err != nil {
			// Abort the rest of the queue; playback errors never escalate.
			log.Printf("playback: synthesis error at sentence %d: %v", i, err)
			c.queue = nil
			c.cursor = 0
			c.speaking = false
			c.cancel = nil
			c.mu.Unlock()
			return
		}
		c.cursor = i + 1
		if c.cursor == len(queue) {
			c.speaking = false
			c.cancel = nil
		}
		c.mu.Unlock()
	}
}

// Stop cancels in-flight synthesis and clears the queue. Idempotent.
func (c *PlaybackController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.queue = nil
	c.cursor = 0
	c.speaking = false
}

// Speaking reports whether an utterance is active or pending.
func (c *PlaybackController) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// Position returns the cursor and queue length of the live queue.
func (c *PlaybackController) Position() (cursor, length int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor, len(c.queue)
}

// pickVoice prefers an exact language-tag match and otherwise falls back to
// the synthesizer default. Never blocks and never fails.
func pickVoice(voices []Voice, tag string) Voice {
	for _, v := range voices {
		if v.Language == tag {
			return v
		}
	}
	return Voice{}
}
