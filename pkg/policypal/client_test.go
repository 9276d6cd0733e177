package policypal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/documents/upload" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("auth header = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("policy_area"); got != "HR" {
			t.Errorf("policy_area = %q", got)
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if header.Filename != "handbook.txt" {
			t.Errorf("filename = %q", header.Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(UploadResult{
			DocumentID: "d1", Filename: "handbook.txt", PolicyArea: "HR", ChunksCreated: 3,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithAPIKey("sk-test"))
	res, err := c.Upload(context.Background(), "handbook.txt", strings.NewReader("Leave policy."), "HR")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.DocumentID != "d1" || res.ChunksCreated != 3 {
		t.Errorf("res = %+v", res)
	}
}

func TestQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["question"] != "How much leave do I get?" {
			t.Errorf("question = %q", body["question"])
		}
		_ = json.NewEncoder(w).Encode(QueryResult{
			Answer:           "Twelve weeks per the handbook.",
			Sources:          []string{"handbook.txt"},
			ITContext:        []string{},
			HRContext:        []string{"Parental leave is twelve weeks."},
			ITExpertResponse: "Not an IT matter.",
			HRExpertResponse: "Twelve weeks.",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.Query(context.Background(), "How much leave do I get?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Answer == "" || len(res.Sources) != 1 {
		t.Errorf("res = %+v", res)
	}
	if res.ITExpertResponse == "" || res.HRExpertResponse == "" {
		t.Errorf("expert responses = %q / %q", res.ITExpertResponse, res.HRExpertResponse)
	}
	if len(res.HRContext) != 1 {
		t.Errorf("hr context = %v", res.HRContext)
	}
}

func TestDocumentsAndDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/documents":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"documents": []Document{{DocumentID: "d1", Filename: "a.txt", PolicyArea: "IT", ChunksCount: 2}},
			})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/documents/d1":
			_ = json.NewEncoder(w).Encode(DeleteResult{DocumentID: "d1", ChunksDeleted: 2})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	docs, err := c.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 1 || docs[0].DocumentID != "d1" {
		t.Errorf("docs = %+v", docs)
	}

	res, err := c.Delete(context.Background(), "d1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if res.ChunksDeleted != 2 {
		t.Errorf("res = %+v", res)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code": "document_not_found", "message": "document not found",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Delete(context.Background(), "ghost")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Code != "document_not_found" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestHealthCheckDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(Health{
			Status: "degraded",
			Checks: map[string]string{"database": "ok", "generation": "error"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	h, err := c.HealthCheck(context.Background())
	if err == nil {
		t.Fatal("expected error for degraded server")
	}
	if h.Status != "degraded" || h.Checks["generation"] != "error" {
		t.Errorf("health = %+v", h)
	}
}
