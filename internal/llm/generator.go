// Package llm wraps the external text-generation service. Everything the bot
// says, plus language detection and intent classification, comes through the
// Generator interface; the rest of the codebase never talks to Gemini
// directly, so tests swap in a canned implementation.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	geminiModel = "gemini-1.5-flash"
	callTimeout = 30 * time.Second
)

// Generator produces a text completion for a prompt. Implementations may fail
// at any time (network, quota, service error); callers must treat failure as
// a first-class outcome and fall back locally.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Google Gemini API.
type GeminiClient struct {
	model *genai.GenerativeModel
}

// NewGeminiClient builds a Gemini-backed Generator. The key may be empty; the
// client still constructs, and calls fail at call time instead.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	return &GeminiClient{model: client.GenerativeModel(geminiModel)}, nil
}

// Generate sends the prompt and returns the completion text. Bounded by
// callTimeout; a timeout is indistinguishable from any other call failure.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("llm: generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("llm: unexpected response part type")
	}
	return string(text), nil
}
