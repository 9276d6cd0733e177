// Package debate orchestrates the retrieval-and-debate pipeline: per-area
// retrieval, two concurrent domain-expert generations, and a coordination
// stage that merges both into one answer. Degenerate model output is
// replaced by deterministic template synthesis; an unavailable backend is a
// hard failure for the query.
package debate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policypal/internal/domain"
	"github.com/kailas-cloud/policypal/internal/metrics"
)

// Answer is the structured result of one debate run.
type Answer struct {
	Final    domain.GenerationResult
	Experts  map[domain.PolicyArea]domain.GenerationResult
	Contexts map[domain.PolicyArea][]string
	Sources  []string
}

// debateState is owned by exactly one Process invocation and never shared
// across queries. Stages fill it strictly in order:
// retrieval -> experts -> coordination.
type debateState struct {
	question string
	contexts map[domain.PolicyArea][]domain.Passage
	sources  []string

	mu      sync.Mutex
	experts map[domain.PolicyArea]domain.GenerationResult

	final domain.GenerationResult
}

// expertAreas are the areas with a debate seat; General contributes sources
// but has no expert.
var expertAreas = []domain.PolicyArea{domain.AreaIT, domain.AreaHR}

// Service runs debates.
type Service struct {
	retriever Retriever
	generator Generator
	logger    *zap.Logger
}

// New creates a debate service.
func New(retriever Retriever, generator Generator, logger *zap.Logger) *Service {
	return &Service{retriever: retriever, generator: generator, logger: logger}
}

// Process answers one question. Retrieval failure aborts; generation backend
// failure at any stage aborts; low-quality generations are absorbed by the
// template fallback and never surface as errors.
func (s *Service) Process(ctx context.Context, question string) (Answer, error) {
	state := &debateState{
		question: question,
		experts:  make(map[domain.PolicyArea]domain.GenerationResult, len(expertAreas)),
	}

	retrieved, err := s.retriever.RetrieveAll(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve contexts: %w", err)
	}
	state.contexts = retrieved.Contexts
	state.sources = retrieved.Sources

	if err := s.runExperts(ctx, state); err != nil {
		return Answer{}, err
	}
	if err := s.runCoordinator(ctx, state); err != nil {
		return Answer{}, err
	}

	answer := Answer{
		Final:    state.final,
		Experts:  state.experts,
		Contexts: make(map[domain.PolicyArea][]string, len(state.contexts)),
		Sources:  state.sources,
	}
	for area, passages := range state.contexts {
		texts := make([]string, len(passages))
		for i, p := range passages {
			texts[i] = p.Text
		}
		answer.Contexts[area] = texts
	}
	return answer, nil
}

// runExperts executes both expert stages concurrently. They have no data
// dependency on each other; the caller proceeds only after both finish.
func (s *Service) runExperts(ctx context.Context, state *debateState) error {
	errs := make([]error, len(expertAreas))

	var wg sync.WaitGroup
	for i, area := range expertAreas {
		wg.Add(1)
		go func(i int, area domain.PolicyArea) {
			defer wg.Done()
			errs[i] = s.runExpert(ctx, state, area)
		}(i, area)
	}
	wg.Wait()

	for i, area := range expertAreas {
		if errs[i] != nil {
			return fmt.Errorf("%s expert: %w", area, errs[i])
		}
	}
	return nil
}

func (s *Service) runExpert(ctx context.Context, state *debateState, area domain.PolicyArea) error {
	prompt := ExpertPrompt{
		Area:     area,
		Question: state.question,
		Context:  joinPassages(state.contexts[area]),
	}

	raw, err := s.generator.Generate(ctx, prompt.System(), prompt.User())
	if err != nil {
		return err
	}

	result := s.validateExpert(prompt, raw)

	state.mu.Lock()
	state.experts[area] = result
	state.mu.Unlock()
	return nil
}

func (s *Service) runCoordinator(ctx context.Context, state *debateState) error {
	prompt := CoordinatorPrompt{
		Question:   state.question,
		ITAnalysis: state.experts[domain.AreaIT].Text,
		HRAnalysis: state.experts[domain.AreaHR].Text,
	}

	raw, err := s.generator.Generate(ctx, prompt.System(), prompt.User())
	if err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}

	state.final = s.validateCoordinator(prompt, raw)
	return nil
}

// validateExpert returns the raw generation when it passes the degeneracy
// checks, otherwise the deterministic expert template.
func (s *Service) validateExpert(prompt ExpertPrompt, raw string) domain.GenerationResult {
	reason, degenerate := checkDegenerate(raw, prompt.System())
	if !degenerate {
		return domain.GenerationResult{Text: strings.TrimSpace(raw)}
	}

	s.logger.Info("Degenerate expert generation, using template fallback",
		zap.String("role", string(prompt.Role())),
		zap.String("reason", reason),
		zap.Int("response_len", len(raw)),
	)
	metrics.GenerationFallbacksTotal.WithLabelValues(string(prompt.Role()), reason).Inc()

	return domain.GenerationResult{Text: expertFallback(prompt), IsFallback: true}
}

// validateCoordinator mirrors validateExpert for the coordination stage.
func (s *Service) validateCoordinator(prompt CoordinatorPrompt, raw string) domain.GenerationResult {
	reason, degenerate := checkDegenerate(raw, prompt.System())
	if !degenerate {
		return domain.GenerationResult{Text: strings.TrimSpace(raw)}
	}

	s.logger.Info("Degenerate coordinator generation, using template fallback",
		zap.String("role", string(RoleCoordinator)),
		zap.String("reason", reason),
		zap.Int("response_len", len(raw)),
	)
	metrics.GenerationFallbacksTotal.WithLabelValues(string(RoleCoordinator), reason).Inc()

	return domain.GenerationResult{Text: coordinatorFallback(prompt), IsFallback: true}
}

func joinPassages(passages []domain.Passage) string {
	if len(passages) == 0 {
		return ""
	}
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n\n")
}
