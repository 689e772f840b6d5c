// Package store owns the persistent three-tier model: documents, their
// chunks, and one embedding per chunk. One ingestion job writes all of its
// rows in a single transaction; retrieval joins back from embeddings to
// chunk content under the document-level filters.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"
)

var (
	ErrNotConfigured = errors.New("storage location is not configured")
	ErrValidation    = errors.New("validation failed")
)

type Postgres struct {
	dsn       string
	dimension int

	mu sync.Mutex
	db *sql.DB
}

// New builds a store for the given DSN without touching the network. A
// missing DSN is a configuration error and fails here, before any I/O.
func New(dsn string, dimension int) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty database URL", ErrNotConfigured)
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive, got %d", ErrValidation, dimension)
	}
	return &Postgres{dsn: dsn, dimension: dimension}, nil
}

// NewWithDB wraps an existing pool. The schema is assumed to be in place;
// used by tests that manage their own database.
func NewWithDB(db *sql.DB, dimension int) *Postgres {
	return &Postgres{db: db, dimension: dimension}
}

// Connect establishes the pool and ensures the schema exists. It is
// idempotent: a connected store returns immediately.
func (p *Postgres) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectLocked(ctx)
}

func (p *Postgres) connectLocked(ctx context.Context) error {
	if p.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", p.dsn)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping db: %w", err)
	}
	if err := ensureSchema(db, p.dimension); err != nil {
		db.Close()
		return err
	}

	slog.InfoContext(ctx, "connection pool ready", "dimension", p.dimension)
	p.db = db
	return nil
}

// Close releases the pool. Operations after Close reconnect.
func (p *Postgres) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

func (p *Postgres) pool(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(ctx); err != nil {
		return nil, err
	}
	return p.db, nil
}

// Add persists one ingestion job: a document record derived from the first
// chunk's metadata, one chunk row per text with its positional index, and
// one embedding row per chunk. All rows commit together or not at all.
func (p *Postgres) Add(ctx context.Context, embeddings [][]float32, texts []string, source, modelName string, metadatas []map[string]any) error {
	if len(embeddings) != len(texts) {
		return fmt.Errorf("%w: %d embeddings for %d texts", ErrValidation, len(embeddings), len(texts))
	}
	if metadatas == nil {
		metadatas = make([]map[string]any, len(texts))
		for i := range metadatas {
			metadatas[i] = map[string]any{}
		}
	}
	if len(metadatas) != len(texts) {
		return fmt.Errorf("%w: %d metadata maps for %d texts", ErrValidation, len(metadatas), len(texts))
	}
	for i, emb := range embeddings {
		if len(emb) != p.dimension {
			return fmt.Errorf("%w: embedding %d has dimension %d, want %d", ErrValidation, i, len(emb), p.dimension)
		}
	}

	db, err := p.pool(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after a successful commit

	var docMeta map[string]any
	if len(metadatas) > 0 {
		docMeta = DocumentMetadata(metadatas[0])
	} else {
		docMeta = map[string]any{}
	}
	docJSON, err := json.Marshal(docMeta)
	if err != nil {
		return fmt.Errorf("failed to encode document metadata: %w", err)
	}

	var docID string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO documents (source_path, metadata) VALUES ($1, $2) RETURNING id`,
		source, docJSON).Scan(&docID)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	for i, text := range texts {
		chunkJSON, err := json.Marshal(ChunkMetadata(metadatas[i]))
		if err != nil {
			return fmt.Errorf("failed to encode chunk %d metadata: %w", i, err)
		}

		var chunkID string
		err = tx.QueryRowContext(ctx,
			`INSERT INTO chunks (document_id, chunk_index, content, metadata) VALUES ($1, $2, $3, $4) RETURNING id`,
			docID, i, text, chunkJSON).Scan(&chunkID)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO embeddings (chunk_id, embedding, model) VALUES ($1, $2, $3)`,
			chunkID, pgvector.NewVector(embeddings[i]), modelName)
		if err != nil {
			return fmt.Errorf("failed to insert embedding %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ingestion: %w", err)
	}
	return nil
}

// Search returns the contents of the k chunks whose embeddings are nearest
// to queryEmbedding under cosine distance, restricted to documents matching
// every supplied filter. The key "source_path" matches the document's source
// path column; any other key matches the document metadata by exact string
// equality. Fewer than k rows may exist; that is not an error.
func (p *Postgres) Search(ctx context.Context, queryEmbedding []float32, k int, filters map[string]any) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrValidation, k)
	}

	db, err := p.pool(ctx)
	if err != nil {
		return nil, err
	}

	// Checkout one connection so the ef_search setting applies to the
	// session that runs the query.
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SET hnsw.ef_search = 40"); err != nil {
		return nil, fmt.Errorf("failed to set ef_search: %w", err)
	}

	query := `SELECT c.content
		FROM embeddings e
		JOIN chunks c ON e.chunk_id = c.id
		JOIN documents d ON c.document_id = d.id`

	args := []any{pgvector.NewVector(queryEmbedding), k}
	var where []string
	idx := 3
	for _, key := range sortedFilterKeys(filters) {
		if key == "source_path" {
			where = append(where, fmt.Sprintf("d.source_path = $%d", idx))
		} else {
			where = append(where, fmt.Sprintf("d.metadata->>%s = $%d", pq.QuoteLiteral(key), idx))
		}
		args = append(args, fmt.Sprint(filters[key]))
		idx++
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.embedding <=> $1 LIMIT $2"

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}

func sortedFilterKeys(filters map[string]any) []string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
