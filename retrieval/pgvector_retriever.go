package retrieval

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

const (
	createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS vector`

	createTableSQL = `CREATE TABLE IF NOT EXISTS city_chunks (
	id        BIGSERIAL PRIMARY KEY,
	city      TEXT NOT NULL,
	source    TEXT NOT NULL DEFAULT '',
	content   TEXT NOT NULL,
	embedding vector(%d) NOT NULL
)`

	querySimilarSQL = `SELECT content FROM city_chunks WHERE city = $1 ORDER BY embedding <-> $2 LIMIT $3`
)

// PgVectorRetriever ranks city passages by L2 distance with the pgvector extension.
type PgVectorRetriever struct {
	db       querier
	embedder Embedder
}

// querier is satisfied by *pgxpool.Pool and *pgx.Conn.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EnsurePgSchema creates the vector extension and the city_chunks table if missing.
func EnsurePgSchema(ctx context.Context, db execer, dimensions int) error {
	if _, err := db.Exec(ctx, createExtensionSQL); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	if _, err := db.Exec(ctx, fmt.Sprintf(createTableSQL, dimensions)); err != nil {
		return fmt.Errorf("create city_chunks: %w", err)
	}
	return nil
}

func NewPgVectorRetriever(db querier, embedder Embedder) *PgVectorRetriever {
	return &PgVectorRetriever{db: db, embedder: embedder}
}

func (r *PgVectorRetriever) Retrieve(ctx context.Context, city, query string, k int) ([]string, error) {
	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, querySimilarSQL, CityTag(city), pgvector.NewVector(emb), k)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var passages []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		passages = append(passages, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return passages, nil
}
