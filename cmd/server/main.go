package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sutarpriyanshu/ArguMentor/internal/config"
	"github.com/sutarpriyanshu/ArguMentor/internal/httpserver"
	"github.com/sutarpriyanshu/ArguMentor/internal/llm"
	"github.com/sutarpriyanshu/ArguMentor/internal/pipeline"
	"github.com/sutarpriyanshu/ArguMentor/internal/translate"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()
	ctx := context.Background()

	gemini, err := llm.NewGeminiClient(ctx, cfg.GoogleAPIKey, cfg.GeminiModelID)
	if err != nil {
		log.Fatalf("gemini client: %v", err)
	}

	// Translation degrades gracefully: a nil translator keeps original text.
	var translator translate.Translator
	if tr, err := translate.NewGoogleClient(ctx, cfg.GoogleProjectID); err != nil {
		log.Printf("translation unavailable, continuing without it: %v", err)
	} else {
		translator = tr
		defer tr.Close()
	}

	e := httpserver.New(pipeline.New(gemini, translator), cfg.RequestTimeout)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}
