// Package translate wraps the Google Cloud Translation API.
package translate

import (
	"context"
	"fmt"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// Translator converts text to a target language ("en" or "hi"). Callers
// treat failures as non-fatal and keep the original text.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// GoogleClient is the Cloud Translation v2 implementation.
type GoogleClient struct {
	client *translate.Client
}

// NewGoogleClient builds a translation client. projectID selects the
// billing/quota project; credentials come from the environment.
func NewGoogleClient(ctx context.Context, projectID string) (*GoogleClient, error) {
	var opts []option.ClientOption
	if projectID != "" {
		opts = append(opts, option.WithQuotaProject(projectID))
	}
	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("translate: create client: %w", err)
	}
	return &GoogleClient{client: client}, nil
}

// Translate returns text rendered in the target language.
func (g *GoogleClient) Translate(ctx context.Context, text, target string) (string, error) {
	tag, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("translate: bad target %q: %w", target, err)
	}
	res, err := g.client.Translate(ctx, []string{text}, tag, nil)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if len(res) == 0 {
		return "", fmt.Errorf("translate: empty result")
	}
	return res[0].Text, nil
}

// Close releases the underlying connection.
func (g *GoogleClient) Close() error { return g.client.Close() }
