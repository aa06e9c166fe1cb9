package main

import (
	"fmt"
	"io"
	"log"
	"os/exec"
	"sync"

	"github.com/sutarpriyanshu/ArguMentor/internal/speech"
)

// playerSink delivers 48kHz mono PCM to the system player (aplay). When no
// player exists audio is discarded so playback logic still runs end to end.
type playerSink struct {
	mu    sync.Mutex
	stdin io.WriteCloser
	cmd   *exec.Cmd
}

func newPlayerSink() speech.AudioSink {
	if _, err := exec.LookPath("aplay"); err != nil {
		log.Printf("aplay not found; synthesized audio will be discarded")
		return speech.NopSink{}
	}
	return &playerSink{}
}

func (p *playerSink) WritePCM(pcm []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdin == nil {
		cmd := exec.Command("aplay", "-q", "-f", "S16_LE", "-r", "48000", "-c", "1", "-t", "raw")
		stdin, err := cmd.StdinPipe()
		if err != nil {
			log.Printf("player pipe: %v", err)
			return
		}
		if err := cmd.Start(); err != nil {
			log.Printf("player start: %v", err)
			return
		}
		p.cmd = cmd
		p.stdin = stdin
	}
	if _, err := p.stdin.Write(pcm); err != nil {
		log.Printf("player write: %v", err)
		p.closeLocked()
	}
}

// Reset tears the player down so queued audio dies with it; the next write
// starts a fresh one. This is what makes preemption inaudible.
func (p *playerSink) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *playerSink) closeLocked() {
	if p.stdin != nil {
		_ = p.stdin.Close()
		p.stdin = nil
	}
	if p.cmd != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
		p.cmd = nil
	}
}

// micFeeder pumps 16kHz mono PCM from the system recorder (arecord) into
// the recognizer while a capture session is open.
type micFeeder struct {
	rec *speech.AssemblyAIRecognizer

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

func newMicFeeder(rec *speech.AssemblyAIRecognizer) *micFeeder {
	return &micFeeder{rec: rec}
}

func (m *micFeeder) start() error {
	if _, err := exec.LookPath("arecord"); err != nil {
		return fmt.Errorf("arecord not found: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd != nil {
		return nil
	}
	cmd := exec.Command("arecord", "-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "raw")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	m.cmd = cmd
	m.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		buf := make([]byte, 3200) // 100ms at 16kHz mono s16le
		for {
			n, rerr := stdout.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				if err := m.rec.SendPCM16KLE(chunk); err != nil {
					return
				}
			}
			if rerr != nil {
				return
			}
		}
	}(m.done)
	return nil
}

func (m *micFeeder) stop() {
	m.mu.Lock()
	cmd := m.cmd
	done := m.done
	m.cmd = nil
	m.done = nil
	m.mu.Unlock()
	if cmd == nil {
		return
	}
	_ = cmd.Process.Kill()
	_ = cmd.Wait()
	if done != nil {
		<-done
	}
}
