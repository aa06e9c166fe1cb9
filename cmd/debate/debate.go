package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sutarpriyanshu/ArguMentor/internal/apiclient"
	"github.com/sutarpriyanshu/ArguMentor/internal/debate"
	"github.com/sutarpriyanshu/ArguMentor/internal/speech"
)

// uiStrings localizes the terminal chrome the same way the debate itself is
// localized: English or Hindi.
type uiStrings struct {
	topicPrompt  string
	stancePrompt string
	argPrompt    string
	thinking     string
	aiLabel      string
	youLabel     string
	scoreLabel   string
	listening    string
	ended        string
	againPrompt  string
}

func stringsFor(language string) uiStrings {
	if language == debate.LangHindi {
		return uiStrings{
			topicPrompt:  "बहस का विषय दर्ज करें: ",
			stancePrompt: "आपका पक्ष (for/against): ",
			argPrompt:    "आपका तर्क> ",
			thinking:     "एआई सोच रहा है...",
			aiLabel:      "एआई",
			youLabel:     "आप",
			scoreLabel:   "आपका स्कोर",
			listening:    "सुन रहा है... (:mic से बंद करें)",
			ended:        "बहस समाप्त",
			againPrompt:  "नई बहस शुरू करें? (y/n): ",
		}
	}
	return uiStrings{
		topicPrompt:  "Enter the debate topic: ",
		stancePrompt: "Your stance (for/against): ",
		argPrompt:    "your argument> ",
		thinking:     "AI is thinking...",
		aiLabel:      "AI",
		youLabel:     "You",
		scoreLabel:   "Your score",
		listening:    "listening... (:mic to stop)",
		ended:        "Debate ended",
		againPrompt:  "Start a new debate? (y/n): ",
	}
}

func runDebate(cmd *cobra.Command, args []string) error {
	server, _ := cmd.Flags().GetString("server")
	topic, _ := cmd.Flags().GetString("topic")
	stanceFlag, _ := cmd.Flags().GetString("stance")
	language, _ := cmd.Flags().GetString("language")
	useVoice, _ := cmd.Flags().GetBool("voice")
	useMic, _ := cmd.Flags().GetBool("mic")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if language != debate.LangEnglish && language != debate.LangHindi {
		return fmt.Errorf("unsupported language %q: use en or hi", language)
	}
	ui := stringsFor(language)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	in := bufio.NewScanner(os.Stdin)
	session := debate.NewSession(apiclient.New(server), time.Duration(timeoutSecs)*time.Second)

	playback := newPlayback(useVoice)
	capture, micFeed := newCapture(useMic)
	if micFeed != nil {
		defer micFeed.stop()
	}

	for {
		if topic == "" {
			fmt.Print(ui.topicPrompt)
			if !in.Scan() {
				return in.Err()
			}
			topic = strings.TrimSpace(in.Text())
		}
		stance := debate.Stance(strings.ToLower(strings.TrimSpace(stanceFlag)))
		for !stance.Valid() {
			fmt.Print(ui.stancePrompt)
			if !in.Scan() {
				return in.Err()
			}
			stance = debate.Stance(strings.ToLower(strings.TrimSpace(in.Text())))
		}
		if err := session.Begin(topic, stance, language); err != nil {
			return err
		}

		fmt.Printf("Debate: %s (%s: %s)\n", topic, ui.youLabel, stance)
		fmt.Println("commands: :end  :mic  :say [n]  :stop  :quit")

		again, err := debateLoop(ctx, in, session, playback, capture, micFeed, language, ui)
		if err != nil || !again {
			return err
		}
		if err := session.Reset(); err != nil {
			return err
		}
		// Next round prompts for everything fresh.
		topic = ""
		stanceFlag = ""
	}
}

// debateLoop runs the Active phase REPL for one debate. It returns true
// when the user finished the debate and wants a new one.
func debateLoop(ctx context.Context, in *bufio.Scanner, session *debate.Session, playback *speech.PlaybackController, capture *speech.CaptureController, micFeed *micFeeder, language string, ui uiStrings) (bool, error) {
	for {
		fmt.Print(ui.argPrompt)
		if !in.Scan() {
			playback.Stop()
			return false, in.Err()
		}
		line := strings.TrimSpace(in.Text())

		switch {
		case line == ":quit":
			playback.Stop()
			return false, nil
		case line == ":stop":
			playback.Stop()
			continue
		case line == ":say" || strings.HasPrefix(line, ":say "):
			replayEntry(session, playback, language, strings.TrimSpace(strings.TrimPrefix(line, ":say")))
			continue
		case line == ":mic":
			toggleMic(capture, micFeed, language, ui)
			continue
		case line == ":end":
			score, err := session.EndDebate(ctx)
			if err != nil {
				fmt.Printf("scoring failed (try :end again): %v\n", err)
				continue
			}
			playback.Stop()
			fmt.Printf("%s\n%s: %d/100\n", ui.ended, ui.scoreLabel, score)
			fmt.Print(ui.againPrompt)
			if !in.Scan() {
				return false, in.Err()
			}
			answer := strings.ToLower(strings.TrimSpace(in.Text()))
			return answer == "y" || answer == "yes", nil
		}

		// A blank line submits whatever the microphone heard.
		if line == "" && capture != nil {
			line = strings.TrimSpace(capture.LiveTranscript())
		}

		fmt.Println(ui.thinking)
		reply, err := session.SubmitArgument(ctx, line)
		switch {
		case errors.Is(err, debate.ErrEmptyArgument):
			continue
		case errors.Is(err, debate.ErrTurnInProgress):
			fmt.Println("previous turn still running")
			continue
		case err != nil:
			fmt.Printf("turn failed: %v\n", err)
			continue
		}

		fmt.Printf("%s: %s\n", ui.aiLabel, reply.Text)
		playback.Play(reply.Text, language)
	}
}

// replayEntry speaks an AI transcript entry again: the n-th one when arg
// is a number (1-based), otherwise the most recent.
func replayEntry(session *debate.Session, playback *speech.PlaybackController, language, arg string) {
	var replies []string
	for _, turn := range session.Transcript() {
		if turn.Speaker == debate.AI {
			replies = append(replies, turn.Text)
		}
	}
	if len(replies) == 0 {
		return
	}
	idx := len(replies) - 1
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(replies) {
			fmt.Printf("no reply %s (have %d)\n", arg, len(replies))
			return
		}
		idx = n - 1
	}
	playback.Play(replies[idx], language)
}

func newPlayback(enabled bool) *speech.PlaybackController {
	if !enabled {
		return speech.NewPlaybackController(nil)
	}
	key := os.Getenv("DEEPGRAM_API_KEY")
	if key == "" {
		fmt.Fprintln(os.Stderr, "DEEPGRAM_API_KEY not set; continuing without speech output")
		return speech.NewPlaybackController(nil)
	}
	return speech.NewPlaybackController(speech.NewDeepgramSynthesizer(key, newPlayerSink()))
}

func newCapture(enabled bool) (*speech.CaptureController, *micFeeder) {
	if !enabled {
		return nil, nil
	}
	key := os.Getenv("ASSEMBLYAI_API_KEY")
	if key == "" {
		fmt.Fprintln(os.Stderr, "ASSEMBLYAI_API_KEY not set; continuing without voice input")
		return nil, nil
	}
	rec := speech.NewAssemblyAIRecognizer(key)
	return speech.NewCaptureController(rec), newMicFeeder(rec)
}

func toggleMic(capture *speech.CaptureController, mic *micFeeder, language string, ui uiStrings) {
	if capture == nil {
		fmt.Println("voice input not enabled (run with --mic)")
		return
	}
	if capture.Listening() {
		capture.Stop()
		if mic != nil {
			mic.stop()
		}
		fmt.Printf("heard: %s\n", capture.LiveTranscript())
		return
	}
	if err := capture.Start(language); err != nil {
		fmt.Printf("voice input unavailable: %v\n", err)
		return
	}
	if mic != nil {
		if err := mic.start(); err != nil {
			fmt.Printf("microphone unavailable: %v\n", err)
			capture.Stop()
			return
		}
	}
	fmt.Println(ui.listening)
}
