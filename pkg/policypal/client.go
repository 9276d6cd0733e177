// Package policypal is a small REST client for the PolicyPal API.
package policypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 300 * time.Second

// Client talks to a PolicyPal server.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithAPIKey sets the Bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the given base URL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("policypal: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// UploadResult is the response to a document upload.
type UploadResult struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	PolicyArea    string `json:"policy_area"`
	ChunksCreated int    `json:"chunks_created"`
}

// Document describes one stored document.
type Document struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	PolicyArea  string `json:"policy_area"`
	ChunksCount int    `json:"chunks_count"`
}

// DeleteResult is the response to a document deletion.
type DeleteResult struct {
	DocumentID    string `json:"document_id"`
	ChunksDeleted int    `json:"chunks_deleted"`
}

// QueryResult is the debate answer for a question.
type QueryResult struct {
	Answer           string   `json:"answer"`
	Sources          []string `json:"sources"`
	ITContext        []string `json:"it_context"`
	HRContext        []string `json:"hr_context"`
	ITExpertResponse string   `json:"it_expert_response"`
	HRExpertResponse string   `json:"hr_expert_response"`
	IsFallback       bool     `json:"is_fallback"`
}

// Health is the server health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Upload ingests a document into the given policy area (IT, HR or General).
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader, policyArea string) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("policypal: build form: %w", err)
	}
	if _, err := io.Copy(fw, content); err != nil {
		return UploadResult{}, fmt.Errorf("policypal: read content: %w", err)
	}
	if err := mw.WriteField("policy_area", policyArea); err != nil {
		return UploadResult{}, fmt.Errorf("policypal: build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("policypal: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents/upload", &buf)
	if err != nil {
		return UploadResult{}, fmt.Errorf("policypal: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResult
	if err := c.do(req, &out); err != nil {
		return UploadResult{}, err
	}
	return out, nil
}

// Query runs the debate pipeline for a question.
func (c *Client) Query(ctx context.Context, question string) (QueryResult, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return QueryResult{}, fmt.Errorf("policypal: marshal question: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/query", bytes.NewReader(body))
	if err != nil {
		return QueryResult{}, fmt.Errorf("policypal: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out QueryResult
	if err := c.do(req, &out); err != nil {
		return QueryResult{}, err
	}
	return out, nil
}

// Documents lists stored documents.
func (c *Client) Documents(ctx context.Context) ([]Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/documents", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("policypal: build request: %w", err)
	}

	var out struct {
		Documents []Document `json:"documents"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// Delete removes a document and all its chunks.
func (c *Client) Delete(ctx context.Context, documentID string) (DeleteResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/api/documents/"+url.PathEscape(documentID), http.NoBody)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("policypal: build request: %w", err)
	}

	var out DeleteResult
	if err := c.do(req, &out); err != nil {
		return DeleteResult{}, err
	}
	return out, nil
}

// HealthCheck reports the server health. A degraded server returns the
// report along with the APIError carrying the 503 status.
func (c *Client) HealthCheck(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return Health{}, fmt.Errorf("policypal: build request: %w", err)
	}

	resp, err := c.send(req)
	if err != nil {
		return Health{}, err
	}
	defer resp.Body.Close()

	var out Health
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Health{}, fmt.Errorf("policypal: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return out, &APIError{StatusCode: resp.StatusCode, Code: "unhealthy", Message: out.Status}
	}
	return out, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("policypal: %w", err)
	}
	return resp, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Code = "unknown"
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("policypal: decode response: %w", err)
	}
	return nil
}
