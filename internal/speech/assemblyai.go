package speech

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// AssemblyAIRecognizer streams microphone PCM to AssemblyAI and emits the
// running transcript of the open session. Every Turn event carries the full
// best transcript so far, which is exactly the replace-semantics the
// capture controller wants.
type AssemblyAIRecognizer struct {
	apiKey string

	mu          sync.RWMutex
	conn        *websocket.Conn
	connected   bool
	transcripts chan string
	errs        chan error
	audio       chan []byte
	stop        chan struct{}
}

type aaiBeginMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	ExpiresAt int64  `json:"expires_at"`
}

type aaiTurnMessage struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript"`
}

type aaiErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// NewAssemblyAIRecognizer builds a recognizer for the given API key.
func NewAssemblyAIRecognizer(apiKey string) *AssemblyAIRecognizer {
	return &AssemblyAIRecognizer{apiKey: apiKey}
}

// Connect opens the streaming session. languageTag is recorded for logging;
// the v3 streaming endpoint transcribes English only, so Hindi capture
// degrades to the service default rather than failing.
func (r *AssemblyAIRecognizer) Connect(languageTag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.connected {
		return nil
	}
	if r.apiKey == "" {
		return fmt.Errorf("assemblyai: API key is empty")
	}

	params := url.Values{}
	params.Set("sample_rate", "16000")
	params.Set("format_turns", "false")
	params.Set("encoding", "pcm_s16le")
	wsURL := fmt.Sprintf("wss://streaming.assemblyai.com/v3/ws?%s", params.Encode())

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.Dial(wsURL, map[string][]string{"Authorization": {r.apiKey}})
	if err != nil {
		if resp != nil {
			log.Printf("assemblyai: connection failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("assemblyai: connect: %w", err)
	}
	log.Printf("assemblyai: session open (requested tag %s)", languageTag)

	r.conn = conn
	r.connected = true
	r.transcripts = make(chan string, 100)
	r.errs = make(chan error, 1)
	r.audio = make(chan []byte, 1000)
	r.stop = make(chan struct{})

	go r.readLoop(conn, r.transcripts, r.errs, r.stop)
	go r.writeLoop(conn, r.audio, r.errs, r.stop)
	return nil
}

// Transcripts yields the running transcript; each value supersedes the last.
func (r *AssemblyAIRecognizer) Transcripts() <-chan string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.transcripts
}

// Errs yields at most one recognition error per session.
func (r *AssemblyAIRecognizer) Errs() <-chan error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.errs
}

// SendPCM16KLE queues mono 16kHz PCM for the session. Drops on backpressure
// rather than stalling the audio source.
func (r *AssemblyAIRecognizer) SendPCM16KLE(pcm []byte) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.connected {
		return fmt.Errorf("assemblyai: not connected")
	}
	select {
	case r.audio <- pcm:
	default:
		log.Printf("assemblyai: audio buffer full, dropping packet")
	}
	return nil
}

// Close terminates the session and closes the event channels.
func (r *AssemblyAIRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.connected {
		return nil
	}
	close(r.stop)
	_ = r.conn.WriteJSON(map[string]string{"type": "Terminate"})
	_ = r.conn.Close()
	r.connected = false
	r.conn = nil
	return nil
}

// readLoop is the sole sender on transcripts, so it also closes it.
func (r *AssemblyAIRecognizer) readLoop(conn *websocket.Conn, transcripts chan string, errs chan error, stop chan struct{}) {
	defer close(transcripts)
	for {
		select {
		case <-stop:
			return
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-stop:
				// session closed locally; not an error
			default:
				emitErr(errs, fmt.Errorf("assemblyai: read: %w", err))
			}
			return
		}
		r.handleMessage(message, transcripts, errs)
	}
}

func (r *AssemblyAIRecognizer) writeLoop(conn *websocket.Conn, audio chan []byte, errs chan error, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case pcm := <-audio:
			if err := conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
				select {
				case <-stop:
				default:
					emitErr(errs, fmt.Errorf("assemblyai: send audio: %w", err))
				}
				return
			}
		}
	}
}

func (r *AssemblyAIRecognizer) handleMessage(message []byte, transcripts chan string, errs chan error) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &base); err != nil {
		log.Printf("assemblyai: bad message: %v", err)
		return
	}
	switch base.Type {
	case "Begin":
		var msg aaiBeginMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			log.Printf("assemblyai: session began id=%s expires=%s",
				msg.ID, time.Unix(msg.ExpiresAt, 0).Format(time.RFC3339))
		}
	case "Turn":
		var msg aaiTurnMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			return
		}
		select {
		case transcripts <- msg.Transcript:
		default:
			log.Printf("assemblyai: transcript buffer full, dropping event")
		}
	case "Termination":
		log.Printf("assemblyai: session terminated by service")
	case "Error":
		var msg aaiErrorMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			emitErr(errs, fmt.Errorf("assemblyai: %s", msg.Error))
		}
	}
}

func emitErr(errs chan error, err error) {
	select {
	case errs <- err:
	default:
	}
}
