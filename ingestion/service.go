package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/vraj1091/RAG/config"
	"github.com/vraj1091/RAG/embeddings"
	"github.com/vraj1091/RAG/knowledge"
)

// Document is the unit of ingestion.
type Document struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Title      string
	SourcePath string
	Text       string
}

type Service struct {
	pool     *pgxpool.Pool
	graph    *knowledge.Graph
	embedder embeddings.Embedder
	logger   *log.Logger
	chunking config.ChunkingConfig
}

func NewService(pool *pgxpool.Pool, graph *knowledge.Graph, embedder embeddings.Embedder, logger *log.Logger, chunking config.ChunkingConfig) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		pool:     pool,
		graph:    graph,
		embedder: embedder,
		logger:   logger,
		chunking: chunking,
	}
}

// Ingest chunks, embeds and persists the document in one transaction.
// Either every chunk lands or none do. Ingesting an already-indexed
// document without deleting it first fails on the chunk uniqueness
// constraint; Reindex is the supported path for updates.
func (s *Service) Ingest(ctx context.Context, doc Document) (int, error) {
	chunks, truncated := SplitBounded(doc.Text, s.chunking.Size, s.chunking.Overlap, s.chunking.MaxChunksPerDocument)
	if truncated {
		s.logger.Printf("ingestion: document %s truncated to %d chunks", doc.ID, len(chunks))
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %s has no indexable content", doc.ID)
	}

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertDocument(ctx, tx, doc); err != nil {
		return 0, err
	}
	if err := insertChunks(ctx, tx, doc, chunks, vectors); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	s.syncGraph(ctx, doc, len(chunks))

	return len(chunks), nil
}

// Reindex re-chunks and re-embeds a stored document, replacing its
// chunks inside one transaction so no partial state is ever visible.
func (s *Service) Reindex(ctx context.Context, documentID uuid.UUID) (int, error) {
	var doc Document
	doc.ID = documentID
	err := s.pool.QueryRow(ctx,
		`SELECT owner_id, COALESCE(title, ''), COALESCE(source_path, ''), content FROM rag_documents WHERE id = $1`,
		documentID,
	).Scan(&doc.OwnerID, &doc.Title, &doc.SourcePath, &doc.Text)
	if err != nil {
		return 0, fmt.Errorf("load document %s: %w", documentID, err)
	}

	chunks, truncated := SplitBounded(doc.Text, s.chunking.Size, s.chunking.Overlap, s.chunking.MaxChunksPerDocument)
	if truncated {
		s.logger.Printf("ingestion: document %s truncated to %d chunks", doc.ID, len(chunks))
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %s has no indexable content", doc.ID)
	}

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM rag_chunks WHERE document_id = $1`, doc.ID); err != nil {
		return 0, fmt.Errorf("delete stale chunks: %w", err)
	}
	if err := upsertDocument(ctx, tx, doc); err != nil {
		return 0, err
	}
	if err := insertChunks(ctx, tx, doc, chunks, vectors); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	s.syncGraph(ctx, doc, len(chunks))

	return len(chunks), nil
}

// Delete removes a document and its chunks. Deleting an unknown id is a
// no-op.
func (s *Service) Delete(ctx context.Context, documentID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM rag_documents WHERE id = $1`, documentID); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}

	if err := s.graph.DeleteDocument(ctx, documentID.String()); err != nil {
		s.logger.Printf("ingestion: graph delete for %s failed: %v", documentID, err)
	}

	return nil
}

func upsertDocument(ctx context.Context, tx pgx.Tx, doc Document) error {
	digest := sha256.Sum256([]byte(doc.Text))

	_, err := tx.Exec(ctx,
		`INSERT INTO rag_documents (id, owner_id, source_path, title, sha256, content)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			source_path = EXCLUDED.source_path,
			title = EXCLUDED.title,
			sha256 = EXCLUDED.sha256,
			content = EXCLUDED.content,
			updated_at = NOW()`,
		doc.ID, doc.OwnerID, doc.SourcePath, doc.Title, hex.EncodeToString(digest[:]), doc.Text)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return nil
}

func insertChunks(ctx context.Context, tx pgx.Tx, doc Document, chunks []string, vectors [][]float32) error {
	for idx, content := range chunks {
		chunkID := ChunkID(doc.ID, idx)
		_, err := tx.Exec(ctx,
			`INSERT INTO rag_chunks (id, document_id, owner_id, chunk_index, content, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			chunkID, doc.ID, doc.OwnerID, idx, content, pgvector.NewVector(vectors[idx]))
		if err != nil {
			return fmt.Errorf("insert chunk %d of document %s: %w", idx, doc.ID, err)
		}
	}
	return nil
}

// ChunkID derives a stable id from the document id and the chunk's
// ordinal position.
func ChunkID(documentID uuid.UUID, index int) uuid.UUID {
	return uuid.NewSHA1(documentID, []byte(fmt.Sprintf("chunk-%d", index)))
}

func (s *Service) syncGraph(ctx context.Context, doc Document, chunkCount int) {
	err := s.graph.SyncDocument(ctx, knowledge.Document{
		ID:         doc.ID.String(),
		OwnerID:    doc.OwnerID.String(),
		Title:      doc.Title,
		ChunkCount: chunkCount,
	})
	if err != nil {
		s.logger.Printf("ingestion: graph sync for %s failed: %v", doc.ID, err)
	}
}
