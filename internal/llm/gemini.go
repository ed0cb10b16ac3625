// Package llm wraps the Gemini API for prose generation.
package llm

import (
	"context"
	"errors"

	genai "google.golang.org/genai"

	"github.com/leoyyy3/mericoComment/internal/contract"
)

// ErrEmptyResponse means the model returned no usable candidate.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// Completer produces prose from a prompt. Satisfied by GeminiClient;
// tests substitute their own.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a client for the configured model. The API
// key comes from config; when empty the genai SDK falls back to its
// own environment lookup.
func NewGeminiClient(ctx context.Context, cfg *contract.Config) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.LLMAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: cfg.LLMModel}, nil
}

// Name identifies the backing model for logging.
func (g *GeminiClient) Name() string { return "Gemini:" + g.model }

// Complete makes one blocking completion call. No retry here: a
// failure propagates directly to the caller.
func (g *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	contract.Info("LLM request (%s): %d bytes", g.model, len(systemPrompt)+len(userPrompt))

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: userPrompt}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
