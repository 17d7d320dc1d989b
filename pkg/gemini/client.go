package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/skillbridge-app/skillbridge-api/pkg/config"
)

// Client wraps the Gemini generative model behind a plain text interface.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// New builds a Gemini client from configuration.
func New(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key missing")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-1.5-pro-latest"
	}
	model := client.GenerativeModel(modelName)
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.4
	}
	model.Temperature = &temp
	// Responses are expected as raw JSON; callers still strip optional code fences.
	model.ResponseMIMEType = "application/json"

	return &Client{client: client, model: model}, nil
}

// GenerateText sends the prompt and returns the concatenated text parts of the
// first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty model response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("model response contained no text")
	}
	return sb.String(), nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	return c.client.Close()
}
