package domain

import (
	"context"
	"fmt"
)

// KeyPrefix namespaces all PolicyPal keys in the database.
const KeyPrefix = "policypal:"

// PolicyArea partitions documents and retrieval.
type PolicyArea string

// Policy areas. Areas lists them in the canonical iteration order used for
// retrieval fan-out and source attribution.
const (
	AreaIT      PolicyArea = "IT"
	AreaHR      PolicyArea = "HR"
	AreaGeneral PolicyArea = "General"
)

// Areas is the canonical area ordering. Iteration over this slice (never over
// a map) keeps retrieval and source ordering stable across runs.
var Areas = []PolicyArea{AreaIT, AreaHR, AreaGeneral}

// ParseArea validates a policy area string.
func ParseArea(s string) (PolicyArea, error) {
	switch PolicyArea(s) {
	case AreaIT, AreaHR, AreaGeneral:
		return PolicyArea(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPolicyArea, s)
}

// Collection returns the vector-index collection name for the area.
func (a PolicyArea) Collection() string {
	switch a {
	case AreaIT:
		return "it_policy"
	case AreaHR:
		return "hr_policy"
	default:
		return "general_policy"
	}
}

// Chunk is a bounded, possibly overlapping substring of a source document.
// Immutable once produced; ordering follows document order.
type Chunk struct {
	Text  string
	Start int
	End   int
}

// Passage is one retrieved chunk with its provenance and similarity distance
// (ascending cosine distance as reported by the store, lower is closer).
type Passage struct {
	Text       string
	DocumentID string
	Filename   string
	Area       PolicyArea
	Distance   float64
}

// DocumentInfo describes a stored document.
type DocumentInfo struct {
	ID         string
	Filename   string
	Area       PolicyArea
	ChunkCount int
}

// EmbeddingResult holds a vector plus provider token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Generator produces text for a (system, user) prompt pair. Implementations
// report availability failures only; judging output quality is the
// validator's job, never the provider's.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GenerationResult is validated generator output. IsFallback marks text
// produced by the deterministic template path instead of the model.
type GenerationResult struct {
	Text       string
	IsFallback bool
}

// HealthChecker is implemented by providers that can probe their backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
