// Package ingest runs the document upload pipeline: validation, raw-file
// persistence, text extraction, chunking, embedding, and storage. It also
// serves document listing and deletion.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/policypal/internal/chunk"
	"github.com/kailas-cloud/policypal/internal/domain"
)

// supportedExtensions gates uploads before any processing. Extraction support
// is narrower; an accepted format without an extractor fails later with
// ErrNoExtractableText.
var supportedExtensions = map[string]struct{}{
	".pdf":  {},
	".txt":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
}

// UploadResult summarizes one ingested document.
type UploadResult struct {
	DocumentID string
	Filename   string
	Area       domain.PolicyArea
	ChunkCount int
}

// Service is the ingestion pipeline.
type Service struct {
	repo      Repository
	embed     Embedder
	extract   Extractor
	uploadDir string
	chunkSize int
	overlap   int
	logger    *zap.Logger
}

// New creates an ingest service with default chunking settings. uploadDir may
// be empty to skip raw-file persistence.
func New(repo Repository, embed Embedder, extract Extractor, uploadDir string, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		embed:     embed,
		extract:   extract,
		uploadDir: uploadDir,
		chunkSize: chunk.DefaultSize,
		overlap:   chunk.DefaultOverlap,
		logger:    logger,
	}
}

// WithChunking overrides chunk size and overlap.
func (s *Service) WithChunking(size, overlap int) *Service {
	if size > 0 {
		s.chunkSize = size
	}
	if overlap >= 0 {
		s.overlap = overlap
	}
	return s
}

// Upload validates, persists, extracts, chunks, embeds and stores one
// document. The returned document ID identifies it for deletion.
func (s *Service) Upload(ctx context.Context, filename string, content []byte, areaName string) (UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := supportedExtensions[ext]; !ok {
		return UploadResult{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, ext)
	}

	area, err := domain.ParseArea(areaName)
	if err != nil {
		return UploadResult{}, err
	}

	docID := uuid.NewString()

	if err := s.saveFile(docID, ext, content); err != nil {
		return UploadResult{}, err
	}

	text, err := s.extract.Extract(ctx, filename, content)
	if err != nil {
		s.removeFile(docID)
		return UploadResult{}, err
	}

	chunks, err := chunk.Split(text, s.chunkSize, s.overlap)
	if err != nil {
		s.removeFile(docID)
		return UploadResult{}, fmt.Errorf("chunk %s: %w", filename, err)
	}
	if len(chunks) == 0 {
		s.removeFile(docID)
		return UploadResult{}, fmt.Errorf("%w: %s produced no chunks", domain.ErrNoExtractableText, filename)
	}

	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		res, err := s.embed.Embed(ctx, c.Text)
		if err != nil {
			s.removeFile(docID)
			return UploadResult{}, fmt.Errorf("embed chunk %d of %s: %w", i, filename, err)
		}
		vectors[i] = res.Embedding
	}

	if err := s.repo.AddChunks(ctx, area, docID, filename, chunks, vectors); err != nil {
		s.removeFile(docID)
		return UploadResult{}, err
	}

	s.logger.Info("Document ingested",
		zap.String("document_id", docID),
		zap.String("filename", filename),
		zap.String("area", string(area)),
		zap.Int("chunks", len(chunks)),
	)

	return UploadResult{DocumentID: docID, Filename: filename, Area: area, ChunkCount: len(chunks)}, nil
}

// List returns stored document summaries.
func (s *Service) List(ctx context.Context) ([]domain.DocumentInfo, error) {
	return s.repo.ListDocuments(ctx)
}

// Delete removes a document's chunks and its saved raw file. Returns the
// number of chunks deleted, ErrDocumentNotFound when nothing was stored under
// the ID.
func (s *Service) Delete(ctx context.Context, docID string) (int, error) {
	deleted, err := s.repo.DeleteDocument(ctx, docID)
	if err != nil {
		return deleted, err
	}
	if deleted == 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, docID)
	}

	s.removeFile(docID)

	s.logger.Info("Document deleted",
		zap.String("document_id", docID), zap.Int("chunks", deleted))
	return deleted, nil
}

// saveFile persists the raw upload as <uploadDir>/<docID><ext>.
func (s *Service) saveFile(docID, ext string, content []byte) error {
	if s.uploadDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.uploadDir, docID+ext)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	return nil
}

// removeFile deletes the saved raw file, whatever its extension. Best effort;
// a leftover file is harmless and logged.
func (s *Service) removeFile(docID string) {
	if s.uploadDir == "" {
		return
	}
	matches, err := filepath.Glob(filepath.Join(s.uploadDir, docID+".*"))
	if err != nil {
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove uploaded file",
				zap.String("path", m), zap.Error(err))
		}
	}
}
