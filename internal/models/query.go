package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultTopK is the number of chunks retrieved when a request does not say.
	DefaultTopK = 3
	// DefaultRequestThreshold is the request-level threshold default. It is only
	// honored when the server is configured to do so.
	DefaultRequestThreshold = 1.5
	// MaxTopK caps the number of chunks a single query may retrieve.
	MaxTopK = 50
)

// QueryRequest is a question over the indexed documents.
type QueryRequest struct {
	Query     string   `json:"query"`
	TopK      int      `json:"top_k,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// Validate ensures the query is non-empty and normalizes top_k and threshold.
func (q *QueryRequest) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.TopK <= 0 {
		q.TopK = DefaultTopK
	}
	if q.TopK > MaxTopK {
		q.TopK = MaxTopK
	}
	if q.Threshold == nil {
		t := DefaultRequestThreshold
		q.Threshold = &t
	}
	return nil
}

// SourceSnippet is one retrieved chunk returned alongside an answer.
type SourceSnippet struct {
	DocName    string  `json:"doc_name"`
	Content    string  `json:"content"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// QueryResponse is the answer to a QueryRequest.
type QueryResponse struct {
	Answer  string          `json:"answer"`
	Sources []SourceSnippet `json:"sources"`
	Refused bool            `json:"refused"`
}

// QueryRecord is a logged query outcome.
type QueryRecord struct {
	ID        string          `json:"id" db:"id"`
	Query     string          `json:"query" db:"query"`
	Answer    string          `json:"answer" db:"answer"`
	Refused   bool            `json:"refused" db:"refused"`
	BestScore *float64        `json:"best_score,omitempty" db:"best_score"`
	Sources   []SourceSnippet `json:"sources,omitempty" db:"sources"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
