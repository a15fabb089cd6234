package analyzer

import (
	"context"

	"google.golang.org/genai"
)

// CompletionOptions bound one completion request.
type CompletionOptions struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// CompletionClient issues one chat completion and returns the raw text body.
// The Gemini implementation is the production client; tests substitute fakes.
type CompletionClient interface {
	Complete(ctx context.Context, system, prompt string, opts CompletionOptions) (string, error)
}

// GeminiClient wraps the genai SDK for a fixed model.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient builds the production completion client. The API key comes
// from the caller (env), never from package state.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Model() string { return g.model }

func (g *GeminiClient) Complete(ctx context.Context, system, prompt string, opts CompletionOptions) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		Temperature:       genai.Ptr(opts.Temperature),
		MaxOutputTokens:   opts.MaxOutputTokens,
	}
	if opts.TopP > 0 {
		cfg.TopP = genai.Ptr(opts.TopP)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}
