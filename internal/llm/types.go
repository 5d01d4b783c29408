// Package llm defines the boundary to generative-text backends. Backends
// live in their own packages and never leak provider shapes past Client.
package llm

import "context"

// #region roles

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// #endregion

// #region request-response

// Turn is one role/content message in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single generation call. MaxTokens bounds the backend's
// output; the core passes it through and does not enforce it.
type ChatRequest struct {
	Turns       []Turn
	Model       string
	MaxTokens   int
	Temperature float64
}

// Usage is the token accounting reported by a backend.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ChatResponse is the generated text plus usage.
type ChatResponse struct {
	Content string
	Usage   Usage
}

// #endregion

// #region client

// Client is a generative-text backend. Transport and provider errors are
// returned to the caller unchanged in meaning; implementations do not retry.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// #endregion
