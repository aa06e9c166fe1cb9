package speech

import (
	"log"
	"sync"

	"github.com/sutarpriyanshu/ArguMentor/internal/debate"
)

// CaptureController manages the single voice-capture session and mirrors
// its running transcript into the pending user input. At most one session
// is open; listening is true exactly while it is.
type CaptureController struct {
	rec Recognizer

	mu        sync.Mutex
	listening bool
	live      string
}

// NewCaptureController wires a controller to a recognizer. A nil recognizer
// means the platform offers no capture capability.
func NewCaptureController(r Recognizer) *CaptureController {
	return &CaptureController{rec: r}
}

// Start opens a capture session in continuous interim-results mode. Returns
// ErrCaptureUnavailable when the platform has no recognizer. Starting while
// already listening is a no-op.
func (c *CaptureController) Start(language string) error {
	if c.rec == nil {
		return ErrCaptureUnavailable
	}
	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.rec.Connect(debate.SpeechTag(language)); err != nil {
		return err
	}
	c.mu.Lock()
	c.listening = true
	c.mu.Unlock()

	go c.consume()
	return nil
}

// consume replaces the live transcript with each interim event, in event
// order, until the session closes or errors.
func (c *CaptureController) consume() {
	for {
		select {
		case t, ok := <-c.rec.Transcripts():
			if !ok {
				c.setListening(false)
				return
			}
			c.mu.Lock()
			c.live = t
			c.mu.Unlock()
		case err, ok := <-c.rec.Errs():
			if ok && err != nil {
				// Non-fatal: capture stops, last transcript persists.
				log.Printf("capture: recognition error: %v", err)
			}
			c.setListening(false)
			return
		}
	}
}

// Stop closes the capture session. The last live transcript is kept so the
// user can edit or submit it.
func (c *CaptureController) Stop() {
	c.mu.Lock()
	open := c.listening
	c.listening = false
	c.mu.Unlock()
	if open {
		if err := c.rec.Close(); err != nil {
			log.Printf("capture: close: %v", err)
		}
	}
}

// Listening reports whether a capture session is open.
func (c *CaptureController) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// LiveTranscript returns the most recent interim transcript.
func (c *CaptureController) LiveTranscript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

func (c *CaptureController) setListening(on bool) {
	c.mu.Lock()
	c.listening = on
	c.mu.Unlock()
}
