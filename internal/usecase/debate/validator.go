package debate

import "strings"

// Degenerate-generation heuristics. Thresholds are deliberately kept at the
// values the deployed system was tuned with; they are blunt instruments and
// known sources of occasional false positives.
const (
	minResponseLen   = 30  // anything shorter is useless
	echoPrefixLen    = 150 // system-prompt prefix length checked for echoes
	repeatRunWords   = 3   // contiguous word run checked for repetition
	artifactLenLimit = 200 // "Guidelines:" leakage only counts when short
)

// rejection reasons, used as metric labels.
const (
	reasonTooShort   = "too_short"
	reasonPromptEcho = "prompt_echo"
	reasonArtifact   = "instruction_artifact"
	reasonRepetition = "repetition"
)

// checkDegenerate reports whether a raw generation is unusable and why.
// Low-quality-but-present text is the only thing handled here; availability
// failures never reach the validator.
func checkDegenerate(raw, systemPrompt string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	if len(trimmed) < minResponseLen {
		return reasonTooShort, true
	}

	prefix := systemPrompt
	if len(prefix) > echoPrefixLen {
		prefix = prefix[:echoPrefixLen]
	}
	if strings.Contains(lower, strings.ToLower(prefix)) {
		return reasonPromptEcho, true
	}

	if strings.Contains(lower, "your role is to synthesize") {
		return reasonArtifact, true
	}
	if strings.Contains(lower, "guidelines:") && len(trimmed) < artifactLenLimit {
		return reasonArtifact, true
	}

	if hasRepetition(lower, repeatRunWords) {
		return reasonRepetition, true
	}

	return "", false
}

// hasRepetition reports whether any contiguous run of minRepeat words
// reappears later in the text.
func hasRepetition(text string, minRepeat int) bool {
	words := strings.Fields(text)
	if len(words) < minRepeat*2 {
		return false
	}
	for i := 0; i <= len(words)-minRepeat*2; i++ {
		phrase := strings.Join(words[i:i+minRepeat], " ")
		remaining := strings.Join(words[i+minRepeat:], " ")
		if strings.Contains(remaining, phrase) {
			return true
		}
	}
	return false
}
