package config

import (
	"fmt"
	"os"
	"strconv"

	"hr-engine/internal/engine"

	"github.com/joho/godotenv"
)

// Config is the full service configuration, loaded from the environment with
// a .env fallback for local development.
type Config struct {
	Port        string
	DatabaseURL string
	UploadsDir  string
	IndexPath   string

	LLMProvider string
	LLMModel    string
	LLMAPIKey   string

	EmbeddingAPIKey    string
	EmbeddingModel     string
	EmbeddingEndpoint  string
	EmbeddingDimension int

	ChunkSize     int
	ChunkOverlap  int
	TopK          int
	MinSimilarity float64

	SemanticWeight     float64
	SkillWeight        float64
	ShortlistThreshold float64
	MaxParallel        int

	LogJSON bool
	Debug   bool
}

// Load reads configuration from the environment. A missing .env file is fine;
// real deployments set variables directly.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		UploadsDir:  getEnv("UPLOADS_DIR", "./uploads"),
		IndexPath:   getEnv("INDEX_PATH", "./data/policy_index.json"),

		LLMProvider: getEnv("LLM_PROVIDER", "openai"),
		LLMModel:    getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),

		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingEndpoint:  getEnv("EMBEDDING_ENDPOINT", ""),
		EmbeddingDimension: getEnvInt("EMBEDDING_DIMENSION", 384),

		ChunkSize:     getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:  getEnvInt("CHUNK_OVERLAP", 50),
		TopK:          getEnvInt("TOP_K", 5),
		MinSimilarity: getEnvFloat("MIN_SIMILARITY", 0.3),

		SemanticWeight:     getEnvFloat("SEMANTIC_WEIGHT", 0.6),
		SkillWeight:        getEnvFloat("SKILL_WEIGHT", 0.4),
		ShortlistThreshold: getEnvFloat("SHORTLIST_THRESHOLD", 50),
		MaxParallel:        getEnvInt("MAX_PARALLEL", 4),

		LogJSON: getEnvBool("LOG_JSON", false),
		Debug:   getEnvBool("DEBUG", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects any combination the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive, got %d", engine.ErrInvalidConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", engine.ErrInvalidConfig, c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: TOP_K must be positive, got %d", engine.ErrInvalidConfig, c.TopK)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("%w: MIN_SIMILARITY must be in [0,1], got %g", engine.ErrInvalidConfig, c.MinSimilarity)
	}
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("%w: EMBEDDING_DIMENSION must be positive, got %d", engine.ErrInvalidConfig, c.EmbeddingDimension)
	}
	if c.ShortlistThreshold < 0 || c.ShortlistThreshold > 100 {
		return fmt.Errorf("%w: SHORTLIST_THRESHOLD must be in [0,100], got %g", engine.ErrInvalidConfig, c.ShortlistThreshold)
	}
	if c.MaxParallel <= 0 {
		return fmt.Errorf("%w: MAX_PARALLEL must be positive, got %d", engine.ErrInvalidConfig, c.MaxParallel)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
