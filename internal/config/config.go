package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/docrag/internal/domain"
)

// Config holds the docrag API configuration.
type Config struct {
	HTTP       HTTPConfig                `yaml:"http"`
	Auth       AuthConfig                `yaml:"auth"`
	Logging    LoggingConfig             `yaml:"logging"`
	Upload     UploadConfig              `yaml:"upload"`
	Chunking   ChunkingConfig            `yaml:"chunking"`
	Ingestion  IngestionConfig           `yaml:"ingestion"`
	Embedding  EmbeddingConfig           `yaml:"embedding"`
	Providers  map[string]ProviderConfig `yaml:"providers"`
	Generation GenerationConfig          `yaml:"generation"`
	Retrieval  RetrievalConfig           `yaml:"retrieval"`
	WebSearch  WebSearchConfig           `yaml:"websearch"`
	Cache      CacheConfig               `yaml:"cache"`
	Extract    ExtractConfig             `yaml:"extract"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// UploadConfig controls where uploads are kept and how large they may be.
type UploadConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
}

// ChunkingConfig holds the sliding window, in characters.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// IngestionConfig bounds background ingestion.
type IngestionConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// EmbeddingConfig selects the embedding provider and model.
type EmbeddingConfig struct {
	Provider            string     `yaml:"provider"` // openai, local
	Model               string     `yaml:"model"`
	Dimensions          int        `yaml:"dimensions"`
	DocumentInstruction string     `yaml:"document_instruction"`
	QueryInstruction    string     `yaml:"query_instruction"`
	BatchSize           int        `yaml:"batch_size"`
	Cache               EmbedCache `yaml:"cache"`
}

// EmbedCache toggles the embedding cache.
type EmbedCache struct {
	Enabled bool `yaml:"enabled"`
}

// ProviderConfig holds credentials for an OpenAI-compatible endpoint.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// GenerationConfig selects the text generation model.
type GenerationConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RetrievalConfig controls retrieval failure handling and prompt history.
type RetrievalConfig struct {
	DegradeOnError *bool `yaml:"degrade_on_error"`
	HistoryTurns   int   `yaml:"history_turns"`
}

// WebSearchConfig selects the web search backend for deep research.
type WebSearchConfig struct {
	Provider          string  `yaml:"provider"` // tavily, none
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	MaxResults        int     `yaml:"max_results"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// CacheConfig holds the key-value store backing the embedding cache.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis, valkey
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Standalone       bool     `yaml:"standalone"`
	TTLHours         int      `yaml:"ttl_hours"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ExtractConfig configures external extraction tools.
type ExtractConfig struct {
	OCRCommand  string `yaml:"ocr_command"`
	OCRLanguage string `yaml:"ocr_language"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory is loaded first when present.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Upload.Dir == "" {
		c.Upload.Dir = "uploads"
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = 50 << 20
	}
	// Overlap is only defaulted alongside size: an explicit size with no overlap means none.
	if c.Chunking.Size == 0 {
		c.Chunking.Size = 512
		if c.Chunking.Overlap == 0 {
			c.Chunking.Overlap = 50
		}
	}
	if c.Ingestion.Concurrency <= 0 {
		c.Ingestion.Concurrency = 4
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Generation.Provider == "" {
		c.Generation.Provider = "openai"
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-4o-mini"
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 60
	}
	if c.Retrieval.DegradeOnError == nil {
		v := true
		c.Retrieval.DegradeOnError = &v
	}
	if c.Retrieval.HistoryTurns <= 0 {
		c.Retrieval.HistoryTurns = 6
	}
	if c.WebSearch.Provider == "" {
		c.WebSearch.Provider = "none"
	}
	if c.WebSearch.MaxResults <= 0 {
		c.WebSearch.MaxResults = 5
	}
	if c.WebSearch.RequestsPerSecond <= 0 {
		c.WebSearch.RequestsPerSecond = 1
	}
	if c.WebSearch.TimeoutSec <= 0 {
		c.WebSearch.TimeoutSec = 10
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d: %w", c.Chunking.Size, domain.ErrInvalidConfiguration)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be in [0, %d), got %d: %w",
			c.Chunking.Size, c.Chunking.Overlap, domain.ErrInvalidConfiguration)
	}

	switch c.Embedding.Provider {
	case "local":
	case "openai":
		if _, ok := c.Providers[c.Embedding.Provider]; !ok {
			return fmt.Errorf("providers.%s is required for embedding: %w",
				c.Embedding.Provider, domain.ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"local\", got %q: %w",
			c.Embedding.Provider, domain.ErrInvalidConfiguration)
	}

	if _, ok := c.Providers[c.Generation.Provider]; !ok {
		return fmt.Errorf("providers.%s is required for generation: %w",
			c.Generation.Provider, domain.ErrInvalidConfiguration)
	}

	switch c.WebSearch.Provider {
	case "none":
	case "tavily":
		if c.WebSearch.APIKey == "" {
			return fmt.Errorf("websearch.api_key is required for tavily: %w", domain.ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("websearch.provider must be \"tavily\" or \"none\", got %q: %w",
			c.WebSearch.Provider, domain.ErrInvalidConfiguration)
	}

	switch c.Cache.Driver {
	case "memory":
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q: %w", c.Cache.Driver, domain.ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("cache.driver must be memory, redis or valkey, got %q: %w",
			c.Cache.Driver, domain.ErrInvalidConfiguration)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
