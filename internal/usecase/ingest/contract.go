package ingest

import (
	"context"

	"github.com/kailas-cloud/policypal/internal/domain"
)

// Repository is the chunk-storage consumer interface (ISP).
type Repository interface {
	AddChunks(ctx context.Context, area domain.PolicyArea,
		docID, filename string, chunks []domain.Chunk, vectors [][]float32) error
	ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error)
	DeleteDocument(ctx context.Context, docID string) (int, error)
}

// Embedder vectorizes chunk text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Extractor pulls plain text out of an uploaded file. Implementations wrap
// domain.ErrNoExtractableText when the format yields nothing usable.
type Extractor interface {
	Extract(ctx context.Context, filename string, content []byte) (string, error)
}
