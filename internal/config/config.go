package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration, loaded once at process start.
type Config struct {
	HTTPAddress     string
	GoogleAPIKey    string
	GeminiModelID   string
	GoogleProjectID string
	RequestTimeout  time.Duration
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	addr := ":" + port

	googleKey := os.Getenv("GOOGLE_API_KEY")
	if googleKey == "" {
		log.Println("Warning: GOOGLE_API_KEY not set - response generation will not work")
	}

	model := os.Getenv("GEMINI_MODEL_ID")
	if model == "" {
		model = "gemini-pro"
	}

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT_ID")
	if projectID == "" {
		log.Println("Warning: GOOGLE_CLOUD_PROJECT_ID not set - translation will fall back to original text")
	}

	timeout := 20 * time.Second
	if raw := os.Getenv("REQUEST_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		} else {
			log.Printf("Warning: invalid REQUEST_TIMEOUT_SECONDS=%q, using %s", raw, timeout)
		}
	}

	log.Printf("config: HTTP address %s, model %s, request timeout %s", addr, model, timeout)
	return Config{
		HTTPAddress:     addr,
		GoogleAPIKey:    googleKey,
		GeminiModelID:   model,
		GoogleProjectID: projectID,
		RequestTimeout:  timeout,
	}
}
