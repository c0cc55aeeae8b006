// Package llm provides the model provider abstraction and the concrete
// provider implementations the analysis agents run on.
package llm

import (
	"context"
	"net/http"
	"time"
)

// ProviderCallTimeout bounds every reasoning-engine call. A stalled
// provider fails the call instead of hanging the run.
const ProviderCallTimeout = 120 * time.Second

// providerClient is shared by the HTTP-based providers.
var providerClient = &http.Client{Timeout: ProviderCallTimeout}

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Message is the chat-completions message shape shared by the HTTP providers.
type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}
