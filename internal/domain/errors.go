package domain

import "errors"

var (
	// ErrUnsupportedFileType signals an upload with an extension we cannot ingest.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrInvalidPolicyArea signals a policy area outside IT/HR/General.
	ErrInvalidPolicyArea = errors.New("invalid policy area")
	// ErrNoExtractableText signals a document that yielded no text.
	ErrNoExtractableText = errors.New("no extractable text")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrGenerationUnavailable signals an unreachable or unloaded generation backend.
	// Fatal for the current query; never masked by the fallback path.
	ErrGenerationUnavailable = errors.New("generation backend unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
