package genaiinfra

import (
	"context"
	"fmt"

	"github.com/yonasKu/sproutbook-api/internal/config"
	"google.golang.org/genai"
)

// Client calls a Gemini model on Vertex AI. It is the production
// implementation of the recap package's TextGenerator port.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.GenAIProject == "" {
		return nil, fmt.Errorf("GENAI_PROJECT must be set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.GenAIProject,
		Location: cfg.GenAILocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}
	return &Client{client: client, model: cfg.GenAIModel}, nil
}

// Generate sends one system+user prompt pair and returns the generated text.
// An empty response is returned as "" with no error; callers decide whether
// to fall back.
func (c *Client) Generate(ctx context.Context, system, prompt string, maxTokens int32, temperature float32) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   maxTokens,
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return res.Text(), nil
}
