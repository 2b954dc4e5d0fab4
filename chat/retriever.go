package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vraj1091/RAG/embeddings"
)

// Retrieval effort by query complexity.
const (
	standardTopK     = 5
	standardTruncate = 400
	highTopK         = 15
	highTruncate     = 1000
)

type Retriever struct {
	store    VectorStore
	embedder embeddings.Embedder
}

func NewRetriever(store VectorStore, embedder embeddings.Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve embeds the query once and fetches the nearest chunks for the
// owner, with k scaled by complexity.
func (r *Retriever) Retrieve(ctx context.Context, ownerID uuid.UUID, query string, complexity Complexity) ([]ChunkResult, error) {
	embedding, err := embeddings.EmbedOne(ctx, r.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return r.store.SimilarChunks(ctx, ownerID, embedding, TopK(complexity))
}

func TopK(complexity Complexity) int {
	if complexity == ComplexityHigh {
		return highTopK
	}
	return standardTopK
}

func TruncateLimit(complexity Complexity) int {
	if complexity == ComplexityHigh {
		return highTruncate
	}
	return standardTruncate
}

// BuildDocumentBlock joins the retrieved chunks, each truncated to the
// complexity-scaled limit, into one prompt context block.
func BuildDocumentBlock(chunks []ChunkResult, truncateAt int) string {
	if len(chunks) == 0 {
		return ""
	}

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, truncate(chunk.Content, truncateAt))
	}

	return strings.Join(parts, "\n\n--- Document Chunk ---\n\n")
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
