package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalidValue    = errors.New("invalid configuration value")
)

type Config struct {
	DatabaseURL string `envconfig:"POSTGRES_DB_URL"`

	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`
	TiktokenEncoding    string `envconfig:"TIKTOKEN_ENCODING_NAME" default:"o200k_base"`
	QueryLogPath        string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	OpenAIAPIKey         string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL        string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIEmbeddingModel string `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	OpenAILLMModel       string `envconfig:"OPENAI_LLM_MODEL" default:"gpt-4.1-mini"`

	GeminiAPIKey         string `envconfig:"GEMINI_API_KEY"`
	GeminiEmbeddingModel string `envconfig:"GEMINI_EMBEDDING_MODEL" default:"gemini-embedding-001"`
	GeminiLLMModel       string `envconfig:"GEMINI_LLM_MODEL" default:"gemini-2.0-flash"`

	CharacterChunkSize    int `envconfig:"CHARACTER_CHUNK_SIZE" default:"1000"`
	CharacterChunkOverlap int `envconfig:"CHARACTER_CHUNK_OVERLAP" default:"100"`
	TokenChunkSize        int `envconfig:"TOKEN_CHUNK_SIZE" default:"250"`
	TokenChunkOverlap     int `envconfig:"TOKEN_CHUNK_OVERLAP" default:"50"`
}

func Load() (*Config, error) {
	// Env vars may also come from the shell, so a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: POSTGRES_DB_URL", ErrMissingRequired)
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("%w: EMBEDDING_DIMENSIONS must be positive, got %d", ErrInvalidValue, c.EmbeddingDimensions)
	}
	if c.TiktokenEncoding == "" {
		return fmt.Errorf("%w: TIKTOKEN_ENCODING_NAME", ErrMissingRequired)
	}
	return nil
}
