// Package retrieval fans a question out to per-area similarity search and
// merges the ranked passages into one result with deduplicated sources.
package retrieval

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policypal/internal/domain"
)

// DefaultTopK is the number of passages retrieved per policy area.
const DefaultTopK = 5

// Result holds per-area passages in retrieval rank order plus the source
// filenames deduplicated in area-then-rank order. Every configured area has
// an entry; areas without matches map to an empty slice.
type Result struct {
	Contexts map[domain.PolicyArea][]domain.Passage
	Sources  []string
}

// Service runs the retrieval fan-out.
type Service struct {
	repo   Repository
	embed  Embedder
	topK   int
	logger *zap.Logger
}

// New creates a retrieval service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, topK: DefaultTopK, logger: logger}
}

// WithTopK overrides the per-area passage count.
func (s *Service) WithTopK(topK int) *Service {
	if topK > 0 {
		s.topK = topK
	}
	return s
}

// RetrieveAll embeds the question once and queries every policy area
// concurrently. One area failing never aborts the others; a failed area
// yields an empty sequence. Only an embedding failure, a canceled context,
// or all areas failing abort the call.
func (s *Service) RetrieveAll(ctx context.Context, question string) (Result, error) {
	embResult, err := s.embed.Embed(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("vectorize question: %w", err)
	}

	passages := make([][]domain.Passage, len(domain.Areas))
	errs := make([]error, len(domain.Areas))

	var wg sync.WaitGroup
	for i, area := range domain.Areas {
		wg.Add(1)
		go func(i int, area domain.PolicyArea) {
			defer wg.Done()
			passages[i], errs[i] = s.repo.Search(ctx, area, embResult.Embedding, s.topK)
		}(i, area)
	}
	wg.Wait()

	failed := 0
	for i, area := range domain.Areas {
		if errs[i] != nil {
			failed++
			s.logger.Warn("Area retrieval failed",
				zap.String("area", string(area)), zap.Error(errs[i]))
		}
	}
	if failed == len(domain.Areas) {
		return Result{}, fmt.Errorf("retrieval failed for all areas: %w", errs[0])
	}

	res := Result{Contexts: make(map[domain.PolicyArea][]domain.Passage, len(domain.Areas))}
	seen := make(map[string]struct{})

	// Stable source order: canonical area order, then rank order within area.
	for i, area := range domain.Areas {
		if passages[i] == nil {
			passages[i] = []domain.Passage{}
		}
		res.Contexts[area] = passages[i]
		for _, p := range passages[i] {
			if p.Filename == "" {
				continue
			}
			if _, ok := seen[p.Filename]; ok {
				continue
			}
			seen[p.Filename] = struct{}{}
			res.Sources = append(res.Sources, p.Filename)
		}
	}

	return res, nil
}
