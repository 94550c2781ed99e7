// Package qa wires ingestion, retrieval and generation into the upload, query,
// list and clear operations.
package qa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/internal/generator"
	"github.com/hyperjump/docqa/internal/ingest"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/retrieval"
	"github.com/hyperjump/docqa/internal/storage"
	"go.uber.org/zap"
)

// Fixed answers for refused queries.
const (
	AnswerNoChunks       = "Information not found in provided documents."
	AnswerSimilarityLow  = "Information not found in provided documents (Similarity too low)."
	ClearedMessage       = "Index and uploaded files cleared successfully"
	uploadMessageFormat  = "%d files processed and indexed successfully"
	addDocumentsAttempts = 2
)

// Config holds the service settings.
type Config struct {
	UploadDir string
	// RefusalThreshold is the largest best-match distance that still gets an answer.
	RefusalThreshold float64
	// HonorRequestThreshold lets QueryRequest.Threshold replace RefusalThreshold.
	HonorRequestThreshold bool
	// MaskErrors turns generation failures into answer text instead of errors.
	MaskErrors bool
	DefaultTopK int
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// Service is the document QA service.
type Service struct {
	handle    *retrieval.Handle
	ingestor  *ingest.Ingestor
	generator *generator.Generator
	store     storage.Storage
	cfg       Config
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithStorage records uploads and queries in store.
func WithStorage(store storage.Storage) Option {
	return func(s *Service) { s.store = store }
}

// NewService creates a Service.
func NewService(handle *retrieval.Handle, ingestor *ingest.Ingestor, gen *generator.Generator, cfg Config, opts ...Option) *Service {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = models.DefaultTopK
	}
	s := &Service{
		handle:    handle,
		ingestor:  ingestor,
		generator: gen,
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload saves each file under the upload directory and indexes it. A file that
// fails to save, extract or index is logged and skipped; the rest of the batch
// still runs.
func (s *Service) Upload(ctx context.Context, files []UploadFile) (*models.UploadResponse, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	resp := &models.UploadResponse{Files: make([]string, 0, len(files))}
	for _, f := range files {
		name := filepath.Base(f.Name)
		if name == "." || name == string(filepath.Separator) || name == "" {
			s.logger.Error("upload skipped: invalid file name", zap.String("name", f.Name))
			continue
		}
		path := filepath.Join(s.cfg.UploadDir, name)
		size, err := saveFile(path, f.Content)
		if err != nil {
			s.logger.Error("upload skipped: save failed", zap.String("file", name), zap.Error(err))
			continue
		}
		n, err := s.ingest(ctx, path, name, size)
		if errors.Is(err, retrieval.ErrNotPersisted) {
			s.logger.Error("document indexed in memory but not saved to disk; it is searchable until restart",
				zap.String("file", name), zap.Error(err))
			continue
		}
		if err != nil {
			s.logger.Error("error processing file", zap.String("file", name), zap.Error(err))
			continue
		}
		resp.Files = append(resp.Files, name)
		resp.TotalChunks += n
	}
	resp.Message = fmt.Sprintf(uploadMessageFormat, len(resp.Files))
	return resp, nil
}

func saveFile(path string, r io.Reader) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, r)
	if err != nil {
		_ = out.Close()
		return n, err
	}
	return n, out.Close()
}

// IngestFile indexes a file already on disk under its base name. It returns the
// number of chunks added.
func (s *Service) IngestFile(ctx context.Context, path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", path)
	}
	return s.ingest(ctx, path, filepath.Base(path), info.Size())
}

func (s *Service) ingest(ctx context.Context, path, docName string, size int64) (int, error) {
	chunks, err := s.ingestor.ProcessFile(path)
	if err != nil {
		return 0, err
	}
	if err := s.addDocuments(ctx, chunks, docName); err != nil {
		return 0, err
	}
	s.logger.Info("document indexed", zap.String("doc_name", docName), zap.Int("chunks", len(chunks)))
	if s.store != nil {
		up := &models.Upload{DocName: docName, Path: path, SizeBytes: size, Chunks: len(chunks)}
		if err := s.store.RecordUpload(ctx, up); err != nil {
			s.logger.Warn("failed to record upload", zap.String("doc_name", docName), zap.Error(err))
		}
	}
	return len(chunks), nil
}

// addDocuments retries once on the live retriever when a concurrent clear retired
// the one it started with.
func (s *Service) addDocuments(ctx context.Context, chunks []string, docName string) error {
	var err error
	for i := 0; i < addDocumentsAttempts; i++ {
		err = s.handle.Current().AddDocuments(ctx, chunks, docName)
		if !errors.Is(err, retrieval.ErrClosed) {
			return err
		}
	}
	return err
}

// HasDocument reports whether docName is already indexed.
func (s *Service) HasDocument(docName string) bool {
	return s.handle.Current().HasDocument(docName)
}

// Query retrieves the nearest chunks and answers from them, refusing when nothing
// was retrieved or the best distance exceeds the refusal threshold.
func (s *Service) Query(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	if req.TopK <= 0 {
		req.TopK = s.cfg.DefaultTopK
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	results, err := s.handle.Current().Retrieve(ctx, req.Query, req.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	s.logger.Debug("query", zap.String("query", req.Query), zap.Int("top_k", req.TopK), zap.Int("results", len(results)))

	if len(results) == 0 {
		resp := refusal(AnswerNoChunks)
		s.record(ctx, req.Query, resp, nil)
		return resp, nil
	}

	for i, r := range results {
		s.logger.Debug("retrieved chunk",
			zap.Int("rank", i),
			zap.Float64("score", r.Score),
			zap.String("doc_name", r.DocName))
	}

	best := results[0].Score
	threshold := s.threshold(req)
	if best > threshold {
		s.logger.Debug("refusal triggered", zap.Float64("best_score", best), zap.Float64("threshold", threshold))
		resp := refusal(AnswerSimilarityLow)
		s.record(ctx, req.Query, resp, &best)
		return resp, nil
	}

	contexts := make([]string, len(results))
	sources := make([]models.SourceSnippet, len(results))
	for i, r := range results {
		contexts[i] = r.Content
		sources[i] = models.SourceSnippet{
			DocName:    r.DocName,
			Content:    r.Content,
			ChunkIndex: r.ChunkIndex,
			Score:      r.Score,
		}
	}

	answer, err := s.generator.GenerateAnswer(ctx, req.Query, contexts)
	if err != nil {
		var be *generator.BackendError
		if !s.cfg.MaskErrors || !errors.As(err, &be) {
			return nil, err
		}
		answer = be.UserMessage()
	}

	resp := &models.QueryResponse{Answer: answer, Sources: sources, Refused: false}
	s.record(ctx, req.Query, resp, &best)
	return resp, nil
}

func (s *Service) threshold(req *models.QueryRequest) float64 {
	if s.cfg.HonorRequestThreshold && req.Threshold != nil {
		return *req.Threshold
	}
	return s.cfg.RefusalThreshold
}

func refusal(answer string) *models.QueryResponse {
	return &models.QueryResponse{Answer: answer, Sources: []models.SourceSnippet{}, Refused: true}
}

// record writes the outcome to the query log. Failures are logged only.
func (s *Service) record(ctx context.Context, query string, resp *models.QueryResponse, best *float64) {
	if s.store == nil {
		return
	}
	rec := &models.QueryRecord{
		Query:     query,
		Answer:    resp.Answer,
		Refused:   resp.Refused,
		BestScore: best,
		Sources:   resp.Sources,
		CreatedAt: time.Now(),
	}
	if err := s.store.RecordQuery(ctx, rec); err != nil {
		s.logger.Warn("failed to record query", zap.Error(err))
	}
}

// Files returns the sorted names of indexed documents.
func (s *Service) Files() []string {
	return s.handle.Current().Documents()
}

// Clear deletes the index, its metadata and every entry of the upload directory,
// resets the upload log and swaps in an empty retriever. Entries of the upload
// directory that cannot be removed are logged and skipped.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.handle.Clear(); err != nil {
		return err
	}
	entries, err := os.ReadDir(s.cfg.UploadDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read upload dir: %w", err)
	}
	for _, e := range entries {
		p := filepath.Join(s.cfg.UploadDir, e.Name())
		if err := os.RemoveAll(p); err != nil {
			s.logger.Warn("failed to delete upload", zap.String("path", p), zap.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.ClearUploads(ctx); err != nil {
			return fmt.Errorf("clear upload log: %w", err)
		}
	}
	s.logger.Info("index and uploads cleared")
	return nil
}

// Status summarizes the service state.
type Status struct {
	Documents      int    `json:"documents"`
	Chunks         int    `json:"chunks"`
	Vectors        int    `json:"vectors"`
	Uploads        int64  `json:"uploads"`
	IndexType      string `json:"index_type"`
	Backend        string `json:"backend"`
	DiskUsageBytes int64  `json:"disk_usage_bytes"`
}

// Status reports counts and disk usage. extraPaths (e.g. the database file) are
// included in the disk usage.
func (s *Service) Status(ctx context.Context, extraPaths ...string) (*Status, error) {
	r := s.handle.Current()
	st := &Status{
		Documents: len(r.Documents()),
		Chunks:    r.ChunkCount(),
		Vectors:   r.Size(),
		IndexType: r.IndexType(),
		Backend:   s.generator.Backend(),
	}
	if s.store != nil {
		n, err := s.store.CountUploads(ctx)
		if err != nil {
			return nil, fmt.Errorf("count uploads: %w", err)
		}
		st.Uploads = n
	}
	paths := []string{s.cfg.UploadDir}
	if p := r.IndexPath(); p != "" {
		paths = append(paths, p, p+config.MetadataSuffix)
	}
	paths = append(paths, extraPaths...)
	usage, err := storage.DiskUsageBytes(paths...)
	if err != nil {
		return nil, fmt.Errorf("disk usage: %w", err)
	}
	st.DiskUsageBytes = usage
	return st, nil
}

// History returns the most recent query log entries, newest first. Without a
// store it returns an empty list.
func (s *Service) History(ctx context.Context, limit int) ([]*models.QueryRecord, error) {
	if s.store == nil {
		return []*models.QueryRecord{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.store.ListQueries(ctx, limit)
}

// Uploads returns the upload log, newest first. Without a store it returns an
// empty list.
func (s *Service) Uploads(ctx context.Context, offset, limit int) ([]*models.Upload, error) {
	if s.store == nil {
		return []*models.Upload{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListUploads(ctx, offset, limit)
}
