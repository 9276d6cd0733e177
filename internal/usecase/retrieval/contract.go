package retrieval

import (
	"context"

	"github.com/kailas-cloud/policypal/internal/domain"
)

// Repository searches stored passages within one policy area.
type Repository interface {
	Search(ctx context.Context, area domain.PolicyArea, vector []float32, topK int) ([]domain.Passage, error)
}

// Embedder vectorizes the question for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
