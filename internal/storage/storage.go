// Package storage records uploads and answered queries.
package storage

import (
	"context"

	"github.com/hyperjump/docqa/internal/models"
)

// Storage is the upload and query log. It is an audit trail only; the document
// registry is always derived from the retrieval metadata.
type Storage interface {
	// Upload operations
	RecordUpload(ctx context.Context, upload *models.Upload) error
	ListUploads(ctx context.Context, offset, limit int) ([]*models.Upload, error)
	CountUploads(ctx context.Context) (int64, error)
	ClearUploads(ctx context.Context) error

	// Query operations
	RecordQuery(ctx context.Context, record *models.QueryRecord) error
	ListQueries(ctx context.Context, limit int) ([]*models.QueryRecord, error)

	Close() error
}
