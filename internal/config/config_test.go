package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DB_URL", "postgres://localhost/ragline?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/ragline?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, 768, cfg.EmbeddingDimensions)
	assert.Equal(t, "o200k_base", cfg.TiktokenEncoding)
	assert.Equal(t, "data/logs/query.log", cfg.QueryLogPath)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAIEmbeddingModel)
	assert.Equal(t, "gemini-embedding-001", cfg.GeminiEmbeddingModel)
	assert.Equal(t, 1000, cfg.CharacterChunkSize)
	assert.Equal(t, 100, cfg.CharacterChunkOverlap)
	assert.Equal(t, 250, cfg.TokenChunkSize)
	assert.Equal(t, 50, cfg.TokenChunkOverlap)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DB_URL", "postgres://localhost/ragline")
	t.Setenv("EMBEDDING_DIMENSIONS", "1536")
	t.Setenv("CHARACTER_CHUNK_SIZE", "500")
	t.Setenv("QUERY_LOG_PATH", "/var/log/ragline/query.log")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1536, cfg.EmbeddingDimensions)
	assert.Equal(t, 500, cfg.CharacterChunkSize)
	assert.Equal(t, "/var/log/ragline/query.log", cfg.QueryLogPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing database URL",
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: ErrMissingRequired,
		},
		{
			name:    "missing tokenizer encoding",
			mutate:  func(c *Config) { c.TiktokenEncoding = "" },
			wantErr: ErrMissingRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				DatabaseURL:         "postgres://localhost/ragline",
				EmbeddingDimensions: 768,
				TiktokenEncoding:    "o200k_base",
			}
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}

	t.Run("non-positive dimensions", func(t *testing.T) {
		cfg := Config{
			DatabaseURL:         "postgres://localhost/ragline",
			EmbeddingDimensions: 0,
			TiktokenEncoding:    "o200k_base",
		}
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidValue)
	})
}
