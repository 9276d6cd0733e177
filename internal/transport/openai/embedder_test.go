package openai

import (
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/policypal/internal/domain"
)

func TestWrapAPIError_RequestError(t *testing.T) {
	cause := &openai.RequestError{
		HTTPStatusCode: 503,
		Body:           []byte("upstream unavailable"),
		Err:            errors.New("service unavailable"),
	}

	err := wrapAPIError(cause, "embedding", domain.ErrEmbeddingProviderError)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "upstream unavailable") {
		t.Errorf("error lost response detail: %v", err)
	}
}

func TestWrapAPIError_APIError(t *testing.T) {
	cause := &openai.APIError{HTTPStatusCode: 429, Message: "rate limit exceeded"}

	err := wrapAPIError(cause, "generation", domain.ErrGenerationUnavailable)
	if !errors.Is(err, domain.ErrGenerationUnavailable) {
		t.Errorf("expected ErrGenerationUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("error lost API detail: %v", err)
	}
}

func TestWrapAPIError_TransportErrorKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:443: connection refused")

	err := wrapAPIError(cause, "embedding", domain.ErrEmbeddingProviderError)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error lost underlying cause: %v", err)
	}
}
