package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragline/internal/chunk"
	"ragline/internal/pipeline"
	"ragline/internal/store"
	"ragline/internal/testutils"
)

// deterministicEmbedder maps each text to a small vector derived from its
// bytes, so similar prefixes land near each other without a real provider.
type deterministicEmbedder struct{}

func (deterministicEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		var v [3]float32
		for j := 0; j < len(t); j++ {
			v[j%3] += float32(t[j]) / 255
		}
		out[i] = []float32{v[0], v[1], v[2]}
	}
	return out, nil
}

func (deterministicEmbedder) ModelName() string { return "deterministic-test-model" }

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, query, contextText string) (string, error) {
	return fmt.Sprintf("answering %q from %d context bytes", query, len(contextText)), nil
}

func TestSmoke_IngestAndQuery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping smoke test in short mode")
	}

	suite := testutils.NewIntegrationSuite(t)
	suite.Setup()
	defer suite.Teardown()

	ctx := context.Background()

	vectorStore, err := store.New(suite.ConnStr, 3)
	require.NoError(t, err)
	defer vectorStore.Close()

	splitter, err := chunk.NewCharacterSplitter(200, 20, wordTokenizer{})
	require.NoError(t, err)

	p := pipeline.New(nil, splitter, deterministicEmbedder{}, vectorStore, echoGenerator{}, nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "handbook.txt")
	content := strings.Repeat("The onboarding handbook explains how deployments work. ", 12)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	require.NoError(t, p.Ingest(ctx, path))

	var chunkCount int
	require.NoError(t, suite.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&chunkCount))
	assert.Positive(t, chunkCount)

	var embeddingCount int
	require.NoError(t, suite.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&embeddingCount))
	assert.Equal(t, chunkCount, embeddingCount)

	answer, err := p.Query(ctx, "how do deployments work?", nil)
	require.NoError(t, err)
	assert.Contains(t, answer, "how do deployments work?")

	answer, err = p.Query(ctx, "filtered", map[string]any{"source_path": path})
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
}

// wordTokenizer avoids downloading a real BPE vocabulary in tests.
type wordTokenizer struct{}

func (wordTokenizer) Encode(text string) []int { return make([]int, len(strings.Fields(text))) }
func (wordTokenizer) Decode(tokens []int) string {
	return strings.TrimSpace(strings.Repeat("word ", len(tokens)))
}
