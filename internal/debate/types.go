// Package debate holds the debate session state machine and its data model.
package debate

import (
	"context"
	"errors"
)

// Phase is the lifecycle state of a debate session.
type Phase int

const (
	Setup Phase = iota
	Active
	Ended
)

func (p Phase) String() string {
	switch p {
	case Setup:
		return "setup"
	case Active:
		return "active"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// Stance is the side a participant argues.
type Stance string

const (
	For     Stance = "for"
	Against Stance = "against"
)

// Opponent returns the opposite stance; the AI always argues it.
func (s Stance) Opponent() Stance {
	if s == For {
		return Against
	}
	return For
}

// Valid reports whether s is one of the two supported stances.
func (s Stance) Valid() bool { return s == For || s == Against }

// Speaker identifies who produced a transcript turn.
type Speaker string

const (
	User Speaker = "user"
	AI   Speaker = "ai"
)

// Turn is one transcript entry. Immutable once appended.
type Turn struct {
	Speaker Speaker `json:"type"`
	Text    string  `json:"text"`
}

// Supported language codes and their speech tags for capture and synthesis.
const (
	LangEnglish = "en"
	LangHindi   = "hi"
)

// SpeechTag maps a debate language code to the BCP-47 tag used by speech
// recognition and synthesis services. Unknown codes map to en-US.
func SpeechTag(language string) string {
	if language == LangHindi {
		return "hi-IN"
	}
	return "en-US"
}

// TurnRequest asks the response pipeline for one AI counter-argument.
type TurnRequest struct {
	Topic        string `json:"topic"`
	UserStance   Stance `json:"userStance"`
	UserArgument string `json:"userArgument"`
	Language     string `json:"language"`
}

// TurnResponse carries the AI reply, already truncated and in the
// requested language.
type TurnResponse struct {
	AIResponseText string `json:"aiResponse"`
}

// ScoreRequest asks the pipeline to grade the user's whole debate.
type ScoreRequest struct {
	Topic      string `json:"topic"`
	UserStance Stance `json:"userStance"`
	Transcript []Turn `json:"debateHistory"`
	Language   string `json:"language"`
}

// ScoreResult is the 0-100 grade for the user's performance.
type ScoreResult struct {
	Score int `json:"score"`
}

// Pipeline generates turns and scores; implemented in-process by
// pipeline.Pipeline and over HTTP by apiclient.Client.
type Pipeline interface {
	GenerateTurn(ctx context.Context, req TurnRequest) (TurnResponse, error)
	ScoreDebate(ctx context.Context, req ScoreRequest) (ScoreResult, error)
}

var (
	// ErrEmptyArgument rejects a submission that is blank after trimming.
	ErrEmptyArgument = errors.New("debate: empty argument")
	// ErrTurnInProgress rejects a submission while another is in flight.
	ErrTurnInProgress = errors.New("debate: turn already in progress")
	// ErrWrongPhase rejects an operation outside its allowed phase.
	ErrWrongPhase = errors.New("debate: operation not allowed in current phase")
)
