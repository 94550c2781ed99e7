package config

// Default values. RefusalThreshold is a squared L2 distance between unit vectors.
const (
	DefaultChunkSize        = 500
	DefaultChunkOverlap     = 50
	DefaultTopK             = 3
	DefaultRefusalThreshold = 1.1
	DefaultHostedModel      = "gpt-3.5-turbo"
	DefaultMaxNewTokens     = 128
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = "./uploads"
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = 120
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "./data/vector_index.faiss"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/docqa.db"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "./data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.OpenAIModel == "" {
		cfg.Embedding.OpenAIModel = "text-embedding-3-small"
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = "memory"
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = DefaultChunkSize
	}
	if cfg.Ingest.ChunkOverlap == nil {
		o := DefaultChunkOverlap
		cfg.Ingest.ChunkOverlap = &o
	}
	if cfg.Query.DefaultTopK == 0 {
		cfg.Query.DefaultTopK = DefaultTopK
	}
	if cfg.Query.RefusalThreshold == nil {
		th := DefaultRefusalThreshold
		cfg.Query.RefusalThreshold = &th
	}
	if cfg.Generator.Hosted.Model == "" {
		cfg.Generator.Hosted.Model = DefaultHostedModel
	}
	if cfg.Generator.Local.BaseURL == "" {
		cfg.Generator.Local.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.Generator.Local.Model == "" {
		cfg.Generator.Local.Model = "smollm:135m"
	}
	if cfg.Generator.Local.MaxNewTokens == 0 {
		cfg.Generator.Local.MaxNewTokens = DefaultMaxNewTokens
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".pdf"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
