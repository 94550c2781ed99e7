// Package config provides configuration loading and structs for the docqa server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Query     QueryConfig     `yaml:"query"`
	Generator GeneratorConfig `yaml:"generator"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	UploadDir          string `yaml:"upload_dir"`
	MaxUploadMB        int64  `yaml:"max_upload_mb"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

// StorageConfig holds paths for the vector index and the upload/query log.
// The chunk metadata sidecar lives next to the index at IndexPath + ".meta".
type StorageConfig struct {
	IndexPath    string `yaml:"index_path"`
	DatabasePath string `yaml:"database_path"`
}

// EmbeddingConfig selects and configures the sentence embedder.
type EmbeddingConfig struct {
	Provider      string `yaml:"provider"` // onnx, openai, or mock
	ModelPath     string `yaml:"model_path"`
	// TokenizerPath is a tokenizer.json or vocab.txt; empty looks next to ModelPath.
	TokenizerPath string `yaml:"tokenizer_path"`
	Dimensions    int    `yaml:"dimensions"`
	MaxTokens     int    `yaml:"max_tokens"`
	CacheSize     int    `yaml:"cache_size"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
}

// VectorConfig selects the similarity index implementation.
type VectorConfig struct {
	IndexType string `yaml:"index_type"` // memory or faiss
}

// IngestConfig holds chunking settings (in characters). ChunkOverlap is a pointer
// so that an explicit 0 (adjacent, non-overlapping windows) survives defaulting.
type IngestConfig struct {
	ChunkSize    int  `yaml:"chunk_size"`
	ChunkOverlap *int `yaml:"chunk_overlap"`
}

// ChunkOverlapOrDefault returns the configured overlap; defaults to 50 when unset.
func (i *IngestConfig) ChunkOverlapOrDefault() int {
	if i.ChunkOverlap != nil {
		return *i.ChunkOverlap
	}
	return DefaultChunkOverlap
}

// QueryConfig holds retrieval and refusal settings.
type QueryConfig struct {
	DefaultTopK      int      `yaml:"default_top_k"`
	RefusalThreshold *float64 `yaml:"refusal_threshold"`
	// HonorRequestThreshold makes the per-request threshold field replace
	// RefusalThreshold. Off by default: the request field is accepted and ignored.
	HonorRequestThreshold bool `yaml:"honor_request_threshold"`
}

// RefusalThresholdOrDefault returns the configured threshold; defaults to 1.1 when
// unset. An explicit 0 only answers exact matches.
func (q *QueryConfig) RefusalThresholdOrDefault() float64 {
	if q.RefusalThreshold != nil {
		return *q.RefusalThreshold
	}
	return DefaultRefusalThreshold
}

// GeneratorConfig selects and configures the answer generation backend.
type GeneratorConfig struct {
	// Backend forces "hosted" or "local". Empty selects hosted when an API key is set.
	Backend    string       `yaml:"backend"`
	MaskErrors *bool        `yaml:"mask_errors"`
	Hosted     HostedConfig `yaml:"hosted"`
	Local      LocalConfig  `yaml:"local"`
}

// MaskErrorsOrDefault returns whether backend failures are folded into the answer; defaults to true.
func (g *GeneratorConfig) MaskErrorsOrDefault() bool {
	if g.MaskErrors != nil {
		return *g.MaskErrors
	}
	return true
}

// HostedConfig configures the hosted chat-completion backend.
type HostedConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// LocalConfig configures the local text-generation backend, an OpenAI-compatible
// completion server such as llama.cpp or Ollama.
type LocalConfig struct {
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	MaxNewTokens int    `yaml:"max_new_tokens"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// MetadataPath returns the sidecar path for chunk metadata.
func (s *StorageConfig) MetadataPath() string {
	return s.IndexPath + MetadataSuffix
}

// MetadataSuffix is appended to the index path to name the metadata sidecar.
const MetadataSuffix = ".meta"

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	finish(&cfg, filepath.Dir(path))
	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults (paths relative to the
// working directory) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	dir, wdErr := os.Getwd()
	if wdErr != nil {
		return nil, fmt.Errorf("working directory: %w", wdErr)
	}
	var def Config
	finish(&def, dir)
	return &def, nil
}

func finish(cfg *Config, configDir string) {
	ApplyDefaults(cfg)
	ApplyEnv(cfg)

	cfg.Server.UploadDir = expandPath(cfg.Server.UploadDir, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.TokenizerPath = expandPath(cfg.Embedding.TokenizerPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
}

// ApplyEnv fills secrets from the environment when the config leaves them empty.
func ApplyEnv(cfg *Config) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return
	}
	if cfg.Generator.Hosted.APIKey == "" {
		cfg.Generator.Hosted.APIKey = key
	}
	if cfg.Embedding.OpenAIAPIKey == "" {
		cfg.Embedding.OpenAIAPIKey = key
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// paths starting with "~/" are relative to the home directory; other relative paths are
// relative to configDir as well.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(configDir, path)
}
