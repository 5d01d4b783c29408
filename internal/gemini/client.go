// Package gemini is a generative-text backend over the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/chain-of-draft/internal/llm"
	"google.golang.org/genai"
)

// generator is the slice of *genai.Models this backend uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client is a thin wrapper around the official genai client.
type Client struct {
	models generator
	model  string
}

var _ llm.Client = (*Client)(nil)

// New creates a Gemini-backed client. model is used when a request does not name one.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Client{models: cli.Models, model: model}, nil
}

// Chat maps system turns to the system instruction and the rest to
// user/model contents.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	var system []string
	var contents []*genai.Content
	for _, t := range req.Turns {
		switch t.Role {
		case llm.RoleSystem:
			system = append(system, t.Content)
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleUser))
		}
	}

	temp := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(system, "\n")}},
		}
	}

	resp, err := c.models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return llm.ChatResponse{}, fmt.Errorf("gemini generate: %w", err)
	}

	out := llm.ChatResponse{Content: resp.Text()}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = llm.Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
		}
	}
	return out, nil
}
