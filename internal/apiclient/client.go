// Package apiclient talks to a running ArguMentor server; it implements
// debate.Pipeline over the HTTP surface so the terminal client drives the
// same state machine against a remote pipeline.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sutarpriyanshu/ArguMentor/internal/debate"
)

// Client is an HTTP debate.Pipeline.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
}

// New builds a client for the given server base URL, e.g. "http://localhost:5000".
func New(baseURL string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    baseURL,
	}
}

// GenerateTurn posts the argument to /api/debate.
func (c *Client) GenerateTurn(ctx context.Context, req debate.TurnRequest) (debate.TurnResponse, error) {
	var resp debate.TurnResponse
	if err := c.post(ctx, "/api/debate", req, &resp); err != nil {
		return debate.TurnResponse{}, err
	}
	return resp, nil
}

// ScoreDebate posts the transcript to /api/end-debate.
func (c *Client) ScoreDebate(ctx context.Context, req debate.ScoreRequest) (debate.ScoreResult, error) {
	var resp debate.ScoreResult
	if err := c.post(ctx, "/api/end-debate", req, &resp); err != nil {
		return debate.ScoreResult{}, err
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if jerr := json.Unmarshal(raw, &apiErr); jerr == nil && apiErr.Error != "" {
			return fmt.Errorf("apiclient: %s: status=%d: %s", path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("apiclient: %s: status=%d body=%s", path, resp.StatusCode, string(raw))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
