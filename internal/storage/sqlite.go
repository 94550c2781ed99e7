package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/docqa/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		doc_name TEXT NOT NULL,
		path TEXT,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		chunks INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at);

	CREATE TABLE IF NOT EXISTS queries (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		answer TEXT NOT NULL,
		refused INTEGER NOT NULL,
		best_score REAL,
		sources TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordUpload inserts an upload. ID and CreatedAt are filled in when empty.
func (s *SQLiteStorage) RecordUpload(ctx context.Context, upload *models.Upload) error {
	if upload.ID == "" {
		upload.ID = uuid.New().String()
	}
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (id, doc_name, path, size_bytes, chunks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		upload.ID, upload.DocName, upload.Path, upload.SizeBytes, upload.Chunks, upload.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

// ListUploads returns uploads, newest first.
func (s *SQLiteStorage) ListUploads(ctx context.Context, offset, limit int) ([]*models.Upload, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc_name, path, size_bytes, chunks, created_at
		 FROM uploads ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uploads := make([]*models.Upload, 0)
	for rows.Next() {
		var u models.Upload
		var path sql.NullString
		if err := rows.Scan(&u.ID, &u.DocName, &path, &u.SizeBytes, &u.Chunks, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Path = path.String
		uploads = append(uploads, &u)
	}
	return uploads, rows.Err()
}

// CountUploads returns the number of recorded uploads.
func (s *SQLiteStorage) CountUploads(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads`).Scan(&n)
	return n, err
}

// ClearUploads deletes every upload record. The query log is kept.
func (s *SQLiteStorage) ClearUploads(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM uploads`)
	return err
}

// RecordQuery inserts a query outcome. Sources are stored as JSON.
func (s *SQLiteStorage) RecordQuery(ctx context.Context, record *models.QueryRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	sourcesJSON, err := json.Marshal(record.Sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}
	var best sql.NullFloat64
	if record.BestScore != nil {
		best = sql.NullFloat64{Float64: *record.BestScore, Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO queries (id, query, answer, refused, best_score, sources, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Query, record.Answer, record.Refused, best, string(sourcesJSON), record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

// ListQueries returns the most recent query records, newest first.
func (s *SQLiteStorage) ListQueries(ctx context.Context, limit int) ([]*models.QueryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, answer, refused, best_score, sources, created_at
		 FROM queries ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.QueryRecord, 0)
	for rows.Next() {
		var r models.QueryRecord
		var best sql.NullFloat64
		var sourcesJSON sql.NullString
		if err := rows.Scan(&r.ID, &r.Query, &r.Answer, &r.Refused, &best, &sourcesJSON, &r.CreatedAt); err != nil {
			return nil, err
		}
		if best.Valid {
			v := best.Float64
			r.BestScore = &v
		}
		if sourcesJSON.Valid && sourcesJSON.String != "" && sourcesJSON.String != "null" {
			if err := json.Unmarshal([]byte(sourcesJSON.String), &r.Sources); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
			}
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
