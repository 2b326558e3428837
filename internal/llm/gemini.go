// Package llm wraps the generative text service used for free-form
// supportive replies when no structured flow claims the turn.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// systemPreamble pins the assistant to its lane. It is fixed and not
// user-configurable.
const systemPreamble = "You are Svitlo AI, a mental health training assistant for veterans. " +
	"You are NOT a medical or crisis service. " +
	"Avoid diagnosis, medications, politics, religion, and graphic trauma details. " +
	"Be calm, respectful, brief. Prefer practical exercises (breathing, grounding, micro-goals). " +
	"If user mentions self-harm or suicide, refuse and urge to contact local crisis lines."

// maxInputRunes caps how much of the user's message is forwarded.
const maxInputRunes = 2000

// maxOutputTokens keeps supportive replies short.
const maxOutputTokens = 300

// Client talks to the Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// New creates a Gemini client. apiKey must be non-empty; callers
// without a key should skip construction and disable the fallback.
func New(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	return &Client{client: client, model: model, timeout: timeout}, nil
}

// Respond generates one supportive reply to the user's message. The
// call is bounded by the configured timeout so a stuck request delays
// only this user's turn.
func (c *Client) Respond(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if runes := []rune(text); len(runes) > maxInputRunes {
		text = string(runes[:maxInputRunes])
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(text),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPreamble, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.4),
			MaxOutputTokens:   maxOutputTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("llm: generate: %w", err)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", fmt.Errorf("llm: empty completion")
	}
	return out, nil
}
