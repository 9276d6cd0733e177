package debate

import (
	"context"

	"github.com/kailas-cloud/policypal/internal/usecase/retrieval"
)

// Retriever runs the per-area retrieval fan-out.
type Retriever interface {
	RetrieveAll(ctx context.Context, question string) (retrieval.Result, error)
}

// Generator produces raw text for a prompt pair. Selected once at startup
// (local or hosted) and injected; the orchestrator never switches providers
// per call.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
