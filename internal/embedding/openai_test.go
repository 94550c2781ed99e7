package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeEmbeddingsServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(req.Input))
		// reverse order to exercise index placement
		for i := range req.Input {
			j := len(req.Input) - 1 - i
			v := make([]float32, dims)
			v[0] = float32(len(req.Input[j]))
			v[1] = 1
			data[i] = item{Object: "embedding", Embedding: v, Index: j}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIEmbedder_EmbedBatch(t *testing.T) {
	srv := fakeEmbeddingsServer(t, 4)
	e, err := NewOpenAIEmbedder("sk-test", srv.URL+"/v1", "text-embedding-3-small", 4)
	if err != nil {
		t.Fatal(err)
	}
	embs, err := e.EmbedBatch(context.Background(), []string{"a", "bbb"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(embs) != 2 {
		t.Fatalf("got %d embeddings", len(embs))
	}
	// "a" -> (1,1,0,0) normalized; "bbb" -> (3,1,0,0) normalized
	if math.Abs(float64(embs[0][0])-1/math.Sqrt(2)) > 1e-5 {
		t.Errorf("embs[0] = %v", embs[0])
	}
	if math.Abs(float64(embs[1][0])-3/math.Sqrt(10)) > 1e-5 {
		t.Errorf("embs[1] = %v", embs[1])
	}
}

func TestOpenAIEmbedder_dimensionMismatch(t *testing.T) {
	srv := fakeEmbeddingsServer(t, 3)
	e, err := NewOpenAIEmbedder("sk-test", srv.URL+"/v1", "text-embedding-3-small", 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestOpenAIEmbedder_serverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()
	e, _ := NewOpenAIEmbedder("sk-bad", srv.URL+"/v1", "text-embedding-3-small", 4)
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Error("expected error")
	}
}

func TestNewOpenAIEmbedder_requiresKey(t *testing.T) {
	if _, err := NewOpenAIEmbedder("", "", "m", 4); err == nil {
		t.Error("expected error without API key")
	}
}
