package llm

import "context"

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req Request) (*Response, error)
	// Name returns the name of this provider.
	Name() string
}

// Request contains the parameters for an LLM completion request.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	JSON        bool
}

// Response contains the result of an LLM completion request.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
	StopReason   string
}
