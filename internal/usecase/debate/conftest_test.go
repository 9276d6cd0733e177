package debate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policypal/internal/domain"
	"github.com/kailas-cloud/policypal/internal/usecase/retrieval"
)

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

// scriptedGenerator answers by role, recognized from the system prompt.
type scriptedGenerator struct {
	itResponse          string
	hrResponse          string
	coordinatorResponse string

	itErr          error
	hrErr          error
	coordinatorErr error
}

func (g *scriptedGenerator) Generate(_ context.Context, systemPrompt, _ string) (string, error) {
	switch {
	case strings.Contains(systemPrompt, "Policy Coordinator"):
		return g.coordinatorResponse, g.coordinatorErr
	case strings.Contains(systemPrompt, "HR Policy Expert"):
		return g.hrResponse, g.hrErr
	default:
		return g.itResponse, g.itErr
	}
}

func retrievalResult(contexts map[domain.PolicyArea][]domain.Passage, sources ...string) retrieval.Result {
	full := make(map[domain.PolicyArea][]domain.Passage, len(domain.Areas))
	for _, area := range domain.Areas {
		if p, ok := contexts[area]; ok {
			full[area] = p
		} else {
			full[area] = []domain.Passage{}
		}
	}
	return retrieval.Result{Contexts: full, Sources: sources}
}

func newTestService(r Retriever, g Generator) *Service {
	return New(r, g, zap.NewNop())
}
