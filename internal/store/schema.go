package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ensureSchema applies the embedded relational migrations, then the
// dimension-dependent DDL. The embeddings table cannot live in a static
// migration file because its vector column width is a per-deployment
// configuration value.
func ensureSchema(db *sql.DB, dimension int) error {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("migration driver error: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source error: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migration instance error: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up error: %w", err)
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS embeddings (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			chunk_id UUID NOT NULL REFERENCES chunks(id) ON DELETE CASCADE,
			embedding vector(%d),
			model TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`, dimension),
		`DROP TRIGGER IF EXISTS embeddings_updated_at ON embeddings;
		CREATE TRIGGER embeddings_updated_at
		BEFORE UPDATE ON embeddings
		FOR EACH ROW
		EXECUTE FUNCTION set_updated_at()`,
		`CREATE INDEX IF NOT EXISTS idx_embeddings_hnsw
		ON embeddings
		USING hnsw (embedding vector_cosine_ops)
		WITH (m = 16, ef_construction = 64)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("embeddings schema error: %w", err)
		}
	}
	return nil
}
