package retrieval

import (
	"context"
	"fmt"
	"time"
)

// Embedder turns text into fixed-length vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Searcher performs filtered nearest-neighbour search over stored chunks.
type Searcher interface {
	Search(ctx context.Context, queryEmbedding []float32, k int, filters map[string]any) ([]string, error)
}

// Retriever is a pure composition: embed the query once, delegate to the
// store. No caching, no query rewriting.
type Retriever struct {
	embedder Embedder
	store    Searcher
	logger   *QueryLogger
}

func NewRetriever(e Embedder, s Searcher, l *QueryLogger) *Retriever {
	return &Retriever{embedder: e, store: s, logger: l}
}

// Retrieve returns the k chunk texts most similar to the query,
// most-similar first.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, filters map[string]any) ([]string, error) {
	start := time.Now()

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}

	results, err := r.store.Search(ctx, vectors[0], k, filters)
	if err != nil {
		return nil, err
	}

	if r.logger != nil {
		r.logger.Log(QueryLogEntry{
			Query:      query,
			NumResults: len(results),
			Duration:   time.Since(start),
		})
	}
	return results, nil
}
