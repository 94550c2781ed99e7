// Package models defines core data structures for chunks, queries, and answers.
package models

import "time"

// ChunkMetadata describes one indexed chunk. Entry i of the metadata sequence
// belongs to vector i of the similarity index.
type ChunkMetadata struct {
	DocName    string `json:"doc_name"`
	Content    string `json:"content"`
	ChunkIndex int    `json:"chunk_index"`
}

// QueryResult is a retrieved chunk with its distance to the query (lower is closer).
type QueryResult struct {
	ChunkMetadata
	Score float64 `json:"score"`
}

// Upload is a record of a successfully ingested file.
type Upload struct {
	ID        string    `json:"id" db:"id"`
	DocName   string    `json:"doc_name" db:"doc_name"`
	Path      string    `json:"path" db:"path"`
	SizeBytes int64     `json:"size_bytes" db:"size_bytes"`
	Chunks    int       `json:"chunks" db:"chunks"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UploadResponse is the response for an upload request.
type UploadResponse struct {
	Message     string   `json:"message"`
	Files       []string `json:"files"`
	TotalChunks int      `json:"total_chunks"`
}
