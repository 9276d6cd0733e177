package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policypal/internal/domain"
)

type mockRepo struct {
	addChunksFn      func(ctx context.Context, area domain.PolicyArea, docID, filename string, chunks []domain.Chunk, vectors [][]float32) error
	listDocumentsFn  func(ctx context.Context) ([]domain.DocumentInfo, error)
	deleteDocumentFn func(ctx context.Context, docID string) (int, error)
}

func (m *mockRepo) AddChunks(ctx context.Context, area domain.PolicyArea, docID, filename string, chunks []domain.Chunk, vectors [][]float32) error {
	return m.addChunksFn(ctx, area, docID, filename, chunks, vectors)
}

func (m *mockRepo) ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error) {
	return m.listDocumentsFn(ctx)
}

func (m *mockRepo) DeleteDocument(ctx context.Context, docID string) (int, error) {
	return m.deleteDocumentFn(ctx, docID)
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return m.embedFn(ctx, text)
}

func constEmbedder(vec []float32) *mockEmbedder {
	return &mockEmbedder{
		embedFn: func(context.Context, string) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{Embedding: vec}, nil
		},
	}
}

func newTestService(repo Repository, embed Embedder, uploadDir string) *Service {
	return New(repo, embed, NewTextExtractor(), uploadDir, zap.NewNop())
}
