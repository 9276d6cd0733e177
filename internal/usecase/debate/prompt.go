package debate

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/policypal/internal/domain"
)

// Role identifies which debate participant a prompt belongs to.
type Role string

// Debate roles.
const (
	RoleITExpert    Role = "it_expert"
	RoleHRExpert    Role = "hr_expert"
	RoleCoordinator Role = "coordinator"
)

// ExpertPrompt carries the typed fields a domain-expert stage is built from.
// The fallback synthesizer reads these fields directly instead of re-parsing
// the rendered prompt text.
type ExpertPrompt struct {
	Area     domain.PolicyArea
	Question string
	Context  string // concatenated passage text, empty when nothing was retrieved
}

// HasContext reports whether any passage text was retrieved for the area.
func (p ExpertPrompt) HasContext() bool {
	return strings.TrimSpace(p.Context) != ""
}

// Role returns the debate role for the prompt's area.
func (p ExpertPrompt) Role() Role {
	if p.Area == domain.AreaHR {
		return RoleHRExpert
	}
	return RoleITExpert
}

func (p ExpertPrompt) focus() string {
	if p.Area == domain.AreaHR {
		return "employee benefits, leave policies, workplace conduct, training, and HR procedures"
	}
	return "technical policies, security, devices, software, and IT procedures"
}

// System renders the expert system prompt.
func (p ExpertPrompt) System() string {
	return fmt.Sprintf(`You are an %[1]s Policy Expert. Your role is to analyze %[1]s policy documents and provide clear, accurate answers based solely on the %[1]s policy information provided.

Guidelines:
- Base your answer ONLY on the %[1]s policy context provided
- Be specific and cite relevant policy details
- If the question is not related to %[1]s policies, state that clearly
- If the context doesn't contain enough information, say so
- Focus on %[2]s`, p.Area, p.focus())
}

// User renders the expert user prompt with the question and the area context
// (or the explicit no-context sentence).
func (p ExpertPrompt) User() string {
	context := p.Context
	if !p.HasContext() {
		context = fmt.Sprintf("No %s policy context available.", p.Area)
	}
	return fmt.Sprintf(
		"Question: %s\n\n%s Policy Context:\n%s\n\nProvide your analysis and answer based on the %s policy context.",
		p.Question, p.Area, context, p.Area,
	)
}

// CoordinatorPrompt carries the typed fields the coordination stage is built
// from: the original question plus both expert analyses.
type CoordinatorPrompt struct {
	Question   string
	ITAnalysis string
	HRAnalysis string
}

// System renders the coordinator system prompt.
func (p CoordinatorPrompt) System() string {
	return `You are a Policy Coordinator. Your role is to synthesize information from IT and HR policy experts to provide a comprehensive, unified answer to the user's question.

Guidelines:
- Combine insights from both IT and HR experts
- Identify any overlaps, conflicts, or nuances between the two perspectives
- Provide a clear, comprehensive answer that addresses all aspects of the question
- If there are conflicts, acknowledge them and explain the different perspectives
- Structure your answer clearly and make it easy to understand
- Ensure the final answer is complete and addresses the user's question fully`
}

// User renders the coordination user prompt embedding both expert analyses.
func (p CoordinatorPrompt) User() string {
	return fmt.Sprintf(`Original Question: %s

IT Policy Expert's Analysis:
%s

HR Policy Expert's Analysis:
%s

Please synthesize these two expert perspectives into a comprehensive final answer that addresses the user's question. Identify any nuances, overlaps, or conflicts between the IT and HR perspectives.`,
		p.Question, p.ITAnalysis, p.HRAnalysis)
}
