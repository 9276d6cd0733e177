package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/policypal/internal/domain"
)

// TextExtractor reads plain-text formats. Binary formats (PDF, images) need a
// dedicated extractor and are reported as unextractable here.
type TextExtractor struct{}

// NewTextExtractor creates the bundled plain-text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract returns the trimmed file text for plain-text formats.
func (e *TextExtractor) Extract(_ context.Context, filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md":
	default:
		return "", fmt.Errorf("%w: no text extractor for %s files", domain.ErrNoExtractableText, ext)
	}

	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrNoExtractableText, filename)
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrNoExtractableText, filename)
	}
	return text, nil
}
