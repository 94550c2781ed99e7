package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/docqa/internal/models"
)

func TestClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/query":
			var req models.QueryRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Query == "" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"detail":"Query cannot be empty"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(models.QueryResponse{Answer: "echo: " + req.Query, Sources: []models.SourceSnippet{}})
		case r.Method == http.MethodGet && r.URL.Path == "/files":
			_, _ = w.Write([]byte(`["a.txt","b.pdf"]`))
		case r.Method == http.MethodPost && r.URL.Path == "/clear":
			_, _ = w.Write([]byte(`{"message":"Index and uploaded files cleared successfully"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	resp, err := c.Query(ctx, &models.QueryRequest{Query: "sky", TopK: 2})
	if err != nil || resp.Answer != "echo: sky" {
		t.Errorf("Query = %+v, %v", resp, err)
	}

	_, err = c.Query(ctx, &models.QueryRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest || apiErr.Detail != "Query cannot be empty" {
		t.Errorf("empty query error = %v", err)
	}

	files, err := c.Files(ctx)
	if err != nil || len(files) != 2 || files[0] != "a.txt" {
		t.Errorf("Files = %v, %v", files, err)
	}

	msg, err := c.Clear(ctx)
	if err != nil || msg != "Index and uploaded files cleared successfully" {
		t.Errorf("Clear = %q, %v", msg, err)
	}
}

func TestAPIError(t *testing.T) {
	if got := (&APIError{StatusCode: 502}).Error(); got != "server returned 502" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&APIError{StatusCode: 400, Detail: "bad"}).Error(); got != "server returned 400: bad" {
		t.Errorf("Error() = %q", got)
	}
}
