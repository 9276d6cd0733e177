// Package chi exposes the PolicyPal HTTP API: document upload and management,
// the debate query endpoint, and health/metrics.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/policypal/internal/domain"
	"github.com/kailas-cloud/policypal/internal/usecase/debate"
	healthuc "github.com/kailas-cloud/policypal/internal/usecase/health"
	"github.com/kailas-cloud/policypal/internal/usecase/ingest"
	"github.com/kailas-cloud/policypal/internal/version"
)

// maxUploadBytes bounds the multipart form held in memory per upload.
const maxUploadBytes = 32 << 20

// error codes returned in the JSON error body.
const (
	codeBadRequest            = "bad_request"
	codeUnsupportedFileType   = "unsupported_file_type"
	codeInvalidPolicyArea     = "invalid_policy_area"
	codeNoExtractableText     = "no_extractable_text"
	codeDocumentNotFound      = "document_not_found"
	codeGenerationUnavailable = "generation_unavailable"
	codeEmbeddingProvider     = "embedding_provider_error"
	codeInternalError         = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use case services to the chi router.
type Server struct {
	ingest        *ingest.Service
	debate        *debate.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingestSvc *ingest.Service,
	debateSvc *debate.Service,
	healthSvc *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest: ingestSvc,
		debate: debateSvc,
		health: healthSvc,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnsupportedFileType, http.StatusBadRequest, codeUnsupportedFileType),
		sentinelHandler(domain.ErrInvalidPolicyArea, http.StatusBadRequest, codeInvalidPolicyArea),
		sentinelHandler(domain.ErrNoExtractableText, http.StatusUnprocessableEntity, codeNoExtractableText),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrGenerationUnavailable, http.StatusBadGateway, codeGenerationUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// RegisterRoutes mounts every API route on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", s.Query)
		r.Get("/documents", s.ListDocuments)
		r.Post("/documents/upload", s.UploadDocument)
		r.Delete("/documents/{documentID}", s.DeleteDocument)
	})
}

// --- Responses ---

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type rootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type uploadResponse struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	PolicyArea    string `json:"policy_area"`
	ChunksCreated int    `json:"chunks_created"`
}

type documentItem struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	PolicyArea  string `json:"policy_area"`
	ChunksCount int    `json:"chunks_count"`
}

type documentListResponse struct {
	Documents []documentItem `json:"documents"`
}

type deleteResponse struct {
	DocumentID    string `json:"document_id"`
	ChunksDeleted int    `json:"chunks_deleted"`
}

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Answer           string   `json:"answer"`
	Sources          []string `json:"sources"`
	ITContext        []string `json:"it_context"`
	HRContext        []string `json:"hr_context"`
	ITExpertResponse string   `json:"it_expert_response"`
	HRExpertResponse string   `json:"hr_expert_response"`
	IsFallback       bool     `json:"is_fallback"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// --- Handlers ---

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Name: "policypal", Version: version.Version})
}

// UploadDocument handles POST /api/documents/upload.
func (s *Server) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "failed to read file: "+err.Error())
		return
	}

	area := r.FormValue("policy_area")
	if area == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "policy_area field is required")
		return
	}

	res, err := s.ingest.Upload(r.Context(), header.Filename, content, area)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		DocumentID:    res.DocumentID,
		Filename:      res.Filename,
		PolicyArea:    string(res.Area),
		ChunksCreated: res.ChunkCount,
	})
}

// ListDocuments handles GET /api/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ingest.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]documentItem, len(docs))
	for i, d := range docs {
		items[i] = documentItem{
			DocumentID:  d.ID,
			Filename:    d.Filename,
			PolicyArea:  string(d.Area),
			ChunksCount: d.ChunkCount,
		}
	}

	writeJSON(w, http.StatusOK, documentListResponse{Documents: items})
}

// DeleteDocument handles DELETE /api/documents/{documentID}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	if docID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "document id is required")
		return
	}

	deleted, err := s.ingest.Delete(r.Context(), docID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{DocumentID: docID, ChunksDeleted: deleted})
}

// Query handles POST /api/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "question is required")
		return
	}

	answer, err := s.debate.Process(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	itContext := answer.Contexts[domain.AreaIT]
	if itContext == nil {
		itContext = []string{}
	}
	hrContext := answer.Contexts[domain.AreaHR]
	if hrContext == nil {
		hrContext = []string{}
	}
	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:           answer.Final.Text,
		Sources:          sources,
		ITContext:        itContext,
		HRContext:        hrContext,
		ITExpertResponse: answer.Experts[domain.AreaIT].Text,
		HRExpertResponse: answer.Experts[domain.AreaHR].Text,
		IsFallback:       answer.Final.IsFallback,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Error handling ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnsupportedFileType,
		domain.ErrInvalidPolicyArea,
		domain.ErrNoExtractableText,
		domain.ErrDocumentNotFound,
		domain.ErrGenerationUnavailable,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
