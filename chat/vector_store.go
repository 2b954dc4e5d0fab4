package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// VectorStore finds the chunks nearest to a query embedding, scoped to
// one owner's documents.
type VectorStore interface {
	SimilarChunks(ctx context.Context, ownerID uuid.UUID, embedding []float32, limit int) ([]ChunkResult, error)
}

type PostgresVectorStore struct {
	pool *pgxpool.Pool
}

var _ VectorStore = (*PostgresVectorStore)(nil)

func NewPostgresVectorStore(pool *pgxpool.Pool) *PostgresVectorStore {
	return &PostgresVectorStore{pool: pool}
}

// SimilarChunks orders by cosine distance ascending; ties break by
// chunk index then document id so results are deterministic.
func (s *PostgresVectorStore) SimilarChunks(ctx context.Context, ownerID uuid.UUID, embedding []float32, limit int) ([]ChunkResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	probes := limit * 10
	if probes < 10 {
		probes = 10
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET ivfflat.probes = %d", probes)); err != nil {
		return nil, fmt.Errorf("set ivfflat probes: %w", err)
	}

	rows, err := conn.Query(ctx,
		`SELECT rc.document_id, rc.chunk_index, rc.content,
			(rc.embedding <=> $2::vector) AS distance
		 FROM rag_chunks rc
		 WHERE rc.owner_id = $1
		 ORDER BY rc.embedding <=> $2::vector, rc.chunk_index, rc.document_id
		 LIMIT $3`,
		ownerID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	var results []ChunkResult
	for rows.Next() {
		var result ChunkResult
		if err := rows.Scan(&result.DocumentID, &result.ChunkIndex, &result.Content, &result.Distance); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}

	return results, nil
}
