// Package pipeline sequences the two flows of the system: ingestion
// (load, chunk, embed, store) and query (retrieve, generate). Each call is
// one logical job; a failure at any step aborts the whole flow and nothing
// partial is persisted, which the store's transactional Add guarantees.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ragline/internal/document"
	"ragline/internal/logger"
	"ragline/internal/retrieval"
)

// DefaultTopK is the number of chunks retrieved to ground an answer.
const DefaultTopK = 3

// Loader reads a file into one or more documents.
type Loader func(path string) ([]document.Document, error)

// Splitter splits one document into ordered overlapping pieces.
type Splitter interface {
	Chunk(doc document.Document) ([]document.Document, error)
}

// Embedder produces one fixed-length vector per input text, in order, and
// reports the model that produced them.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

// Generator produces an answer grounded in the supplied context.
type Generator interface {
	Generate(ctx context.Context, query, contextText string) (string, error)
}

// Store persists and searches embedded chunks.
type Store interface {
	Add(ctx context.Context, embeddings [][]float32, texts []string, source, modelName string, metadatas []map[string]any) error
	Search(ctx context.Context, queryEmbedding []float32, k int, filters map[string]any) ([]string, error)
}

type Pipeline struct {
	loader    Loader
	splitter  Splitter
	embedder  Embedder
	store     Store
	generator Generator
	retriever *retrieval.Retriever
}

func New(loader Loader, splitter Splitter, embedder Embedder, store Store, generator Generator, queryLogger *retrieval.QueryLogger) *Pipeline {
	if loader == nil {
		loader = document.Load
	}
	return &Pipeline{
		loader:    loader,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		generator: generator,
		retriever: retrieval.NewRetriever(embedder, store, queryLogger),
	}
}

// Ingest runs one ingestion job over the file at path. A fresh job
// identifier is stamped into every source document's metadata before
// chunking, so all rows written by this call are traceable as one job.
func (p *Pipeline) Ingest(ctx context.Context, path string) error {
	jobID := uuid.New().String()
	ctx = logger.WithJobID(ctx, jobID)
	slog.InfoContext(ctx, "starting ingestion job", "path", path)

	docs, err := p.loader(path)
	if err != nil {
		return fmt.Errorf("ingest job %s: load: %w", jobID, err)
	}

	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = map[string]any{}
		}
		docs[i].Metadata["ingestion_job_id"] = jobID
	}

	var chunks []document.Document
	for _, doc := range docs {
		pieces, err := p.splitter.Chunk(doc)
		if err != nil {
			return fmt.Errorf("ingest job %s: chunk: %w", jobID, err)
		}
		chunks = append(chunks, pieces...)
	}
	slog.InfoContext(ctx, "chunking complete", "documents", len(docs), "chunks", len(chunks))

	texts := make([]string, len(chunks))
	metadatas := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
		metadatas[i] = c.Metadata
	}

	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("ingest job %s: embed: %w", jobID, err)
	}

	if err := p.store.Add(ctx, embeddings, texts, path, p.embedder.ModelName(), metadatas); err != nil {
		return fmt.Errorf("ingest job %s: store: %w", jobID, err)
	}

	slog.InfoContext(ctx, "ingestion complete", "chunks", len(chunks))
	return nil
}

// Query retrieves the chunks nearest to the question, concatenates them
// with blank-line separators, and asks the generator for an answer grounded
// in that context. The joined context is passed to the provider untruncated.
func (p *Pipeline) Query(ctx context.Context, query string, filters map[string]any) (string, error) {
	slog.InfoContext(ctx, "querying", "query", query)

	results, err := p.retriever.Retrieve(ctx, query, DefaultTopK, filters)
	if err != nil {
		return "", fmt.Errorf("query: retrieve: %w", err)
	}
	contextText := strings.Join(results, "\n\n")

	answer, err := p.generator.Generate(ctx, query, contextText)
	if err != nil {
		return "", fmt.Errorf("query: generate: %w", err)
	}
	return answer, nil
}
