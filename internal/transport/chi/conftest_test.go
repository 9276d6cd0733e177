package chi

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/policypal/internal/domain"
	"github.com/kailas-cloud/policypal/internal/usecase/debate"
	healthuc "github.com/kailas-cloud/policypal/internal/usecase/health"
	"github.com/kailas-cloud/policypal/internal/usecase/ingest"
	"github.com/kailas-cloud/policypal/internal/usecase/retrieval"
)

// --- Mocks ---

type mockIngestRepo struct {
	addChunksFn      func(ctx context.Context, area domain.PolicyArea, docID, filename string, chunks []domain.Chunk, vectors [][]float32) error
	listDocumentsFn  func(ctx context.Context) ([]domain.DocumentInfo, error)
	deleteDocumentFn func(ctx context.Context, docID string) (int, error)
}

func (m *mockIngestRepo) AddChunks(ctx context.Context, area domain.PolicyArea, docID, filename string, chunks []domain.Chunk, vectors [][]float32) error {
	if m.addChunksFn == nil {
		return nil
	}
	return m.addChunksFn(ctx, area, docID, filename, chunks, vectors)
}

func (m *mockIngestRepo) ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error) {
	if m.listDocumentsFn == nil {
		return nil, nil
	}
	return m.listDocumentsFn(ctx)
}

func (m *mockIngestRepo) DeleteDocument(ctx context.Context, docID string) (int, error) {
	if m.deleteDocumentFn == nil {
		return 0, nil
	}
	return m.deleteDocumentFn(ctx, docID)
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn == nil {
		return domain.EmbeddingResult{Embedding: []float32{0.5}}, nil
	}
	return m.embedFn(ctx, text)
}

type mockRetriever struct {
	retrieveAllFn func(ctx context.Context, question string) (retrieval.Result, error)
}

func (m *mockRetriever) RetrieveAll(ctx context.Context, question string) (retrieval.Result, error) {
	return m.retrieveAllFn(ctx, question)
}

type mockGenerator struct {
	generateFn func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.generateFn(ctx, systemPrompt, userPrompt)
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

// --- Helpers ---

func emptyRetrieval() retrieval.Result {
	contexts := make(map[domain.PolicyArea][]domain.Passage, len(domain.Areas))
	for _, area := range domain.Areas {
		contexts[area] = []domain.Passage{}
	}
	return retrieval.Result{Contexts: contexts, Sources: []string{}}
}

type serverMocks struct {
	repo      *mockIngestRepo
	retriever *mockRetriever
	generator *mockGenerator
	pinger    *mockPinger
}

func defaultMocks() *serverMocks {
	return &serverMocks{
		repo: &mockIngestRepo{},
		retriever: &mockRetriever{
			retrieveAllFn: func(context.Context, string) (retrieval.Result, error) {
				return emptyRetrieval(), nil
			},
		},
		generator: &mockGenerator{
			generateFn: func(context.Context, string, string) (string, error) {
				return "A sufficiently long canned answer built for handler tests only.", nil
			},
		},
		pinger: &mockPinger{},
	}
}

func newTestHandler(m *serverMocks) http.Handler {
	logger := zap.NewNop()

	ingestSvc := ingest.New(m.repo, &mockEmbedder{}, ingest.NewTextExtractor(), "", logger)
	debateSvc := debate.New(m.retriever, m.generator, logger)
	healthSvc := healthuc.New(m.pinger, nil, nil)

	srv := NewServer(ingestSvc, debateSvc, healthSvc, logger)
	r := chi.NewRouter()
	srv.RegisterRoutes(r)
	return r
}

func doRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
