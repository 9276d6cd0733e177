package debate

import "fmt"

// Deterministic template synthesis used when a generation fails the
// degeneracy checks. Output is built from the typed prompt fields only,
// never from the rejected model text.

// contextQuoteLen bounds how much retrieved context a fallback quotes.
const contextQuoteLen = 500

// analysisQuoteLen bounds how much of an expert analysis the coordinator
// fallback quotes inline.
const analysisQuoteLen = 200

// substantialLen is the length above which an expert analysis is treated as
// carrying real content in the coordinator synthesis.
const substantialLen = 50

func expertFallback(p ExpertPrompt) string {
	if !p.HasContext() {
		return fmt.Sprintf(
			"Based on the %[1]s policy context provided, I cannot find specific information related to this question in the %[1]s policies. Please consult the %[1]s department for clarification.",
			p.Area,
		)
	}

	return fmt.Sprintf(
		"Based on the %[1]s policy context provided:\n\n%[2]s\n\nAnswer: The %[1]s policy information above addresses aspects of your question about '%[3]s'. Please review the specific policy details mentioned.",
		p.Area, clip(p.Context, contextQuoteLen), p.Question,
	)
}

// coordinatorFallback builds the three-part synthesis (IT view, HR view,
// synthesized view) from both expert responses.
func coordinatorFallback(p CoordinatorPrompt) string {
	out := fmt.Sprintf(`Based on the analysis from both IT and HR policy experts, here is a comprehensive answer to your question: "%s"

**IT Policy Perspective:**
%s

**HR Policy Perspective:**
%s

**Synthesized Answer:**
`, p.Question, p.ITAnalysis, p.HRAnalysis)

	itSubstantial := len(p.ITAnalysis) > substantialLen
	hrSubstantial := len(p.HRAnalysis) > substantialLen

	switch {
	case itSubstantial && hrSubstantial:
		out += fmt.Sprintf(
			"This question involves both IT and HR policy considerations. %s... The HR perspective adds: %s... Together, these perspectives provide a complete understanding of the policy requirements.",
			clip(p.ITAnalysis, analysisQuoteLen), clip(p.HRAnalysis, analysisQuoteLen),
		)
	case itSubstantial:
		out += fmt.Sprintf(
			"The IT policy expert has provided detailed information: %s... This addresses the technical and security aspects of your question.",
			clip(p.ITAnalysis, analysisQuoteLen+100),
		)
	case hrSubstantial:
		out += fmt.Sprintf(
			"The HR policy expert has provided detailed information: %s... This addresses the employee and workplace aspects of your question.",
			clip(p.HRAnalysis, analysisQuoteLen+100),
		)
	default:
		out += "Both experts have provided their perspectives. Please review the IT and HR policy information above for a complete understanding."
	}

	return out
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
