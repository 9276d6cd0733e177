// Package chunk splits extracted document text into overlapping,
// sentence-boundary-aware segments. Chunks are the unit of embedding and
// retrieval; boundaries are deterministic for identical input.
package chunk

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/policypal/internal/domain"
)

// Defaults match the ingestion pipeline settings.
const (
	DefaultSize    = 500
	DefaultOverlap = 100
)

// lookback is how far back from the window end we search for a
// sentence-terminal character before cutting at the raw boundary.
const lookback = 100

// Split cuts text into chunks of at most size characters, consecutive chunks
// overlapping by overlap characters (less when a sentence boundary shortens a
// window). Whitespace-only chunks are dropped. overlap must be smaller than
// size or the window would never advance.
func Split(text string, size, overlap int) ([]domain.Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}

	if len(text) <= size {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil, nil
		}
		return []domain.Chunk{{Text: trimmed, Start: 0, End: len(text)}}, nil
	}

	var chunks []domain.Chunk
	start := 0

	for start < len(text) {
		end := start + size
		if end < len(text) {
			end = cutAtSentence(text, start, end)
		} else {
			end = len(text)
		}

		if trimmed := strings.TrimSpace(text[start:end]); trimmed != "" {
			chunks = append(chunks, domain.Chunk{Text: trimmed, Start: start, End: end})
		}

		// The clamped final window reaches the end of the text; stepping back
		// by the overlap here would only re-emit a tail already covered.
		if end == len(text) {
			break
		}

		next := end - overlap
		if next <= start {
			// A boundary cut shrank the window below the overlap; jump to the
			// cut so the walk always advances.
			next = end
		}
		start = next
	}

	return chunks, nil
}

// cutAtSentence searches backward from end for the nearest sentence-terminal
// character within the lookback window, never past start. Returns the
// position immediately after the terminator, or end unchanged.
func cutAtSentence(text string, start, end int) int {
	low := end - lookback
	if low < start {
		low = start
	}
	for i := end - 1; i >= low; i-- {
		switch text[i] {
		case '.', '!', '?', '\n':
			return i + 1
		}
	}
	return end
}
