package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "debate",
		Short: "Argue a topic against an AI opponent from the terminal",
		Long: "Starts an interactive debate session against a running ArguMentor server. " +
			"You argue one side by typing or speaking; the AI argues the other and " +
			"scores your performance when you end the debate.",
		RunE: runDebate,
	}

	root.Flags().String("server", "http://localhost:5000", "Base URL of the ArguMentor server")
	root.Flags().String("topic", "", "Debate topic (prompted for when empty)")
	root.Flags().String("stance", "", "Your stance: for or against (prompted for when empty)")
	root.Flags().String("language", "en", "Debate language: en or hi")
	root.Flags().Bool("voice", false, "Read AI responses aloud (requires DEEPGRAM_API_KEY)")
	root.Flags().Bool("mic", false, "Enable voice input (requires ASSEMBLYAI_API_KEY)")
	root.Flags().Int("timeout", 20, "Per-turn network timeout in seconds")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
