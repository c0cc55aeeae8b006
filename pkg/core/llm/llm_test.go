package llm

import (
	"context"
	"testing"
	"time"
)

func TestProviderClientHasBoundedTimeout(t *testing.T) {
	if providerClient.Timeout != ProviderCallTimeout {
		t.Errorf("providerClient.Timeout = %v, want %v", providerClient.Timeout, ProviderCallTimeout)
	}
	if ProviderCallTimeout <= 0 {
		t.Fatalf("ProviderCallTimeout must be positive, got %v", ProviderCallTimeout)
	}
}

// A cancelled context must fail the call immediately instead of waiting on
// the remote endpoint.
func TestHTTPProvidersHonorCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	options := map[string]interface{}{"api_key": "test-key"}
	providers := map[string]Provider{
		"openai":   &OpenAIProvider{},
		"deepseek": &DeepSeekProvider{},
	}

	for name, provider := range providers {
		done := make(chan error, 1)
		go func() {
			_, err := provider.GenerateResponse(ctx, "prompt", "system", options)
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				t.Errorf("%s: expected error from cancelled context", name)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("%s: call did not return after context cancellation", name)
		}
	}
}
