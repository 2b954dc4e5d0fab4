package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type stubEmbedder struct {
	vector []float32
	calls  int
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls += len(texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

type stubVectorStore struct {
	results   []ChunkResult
	lastOwner uuid.UUID
	lastLimit int
}

var _ VectorStore = (*stubVectorStore)(nil)

func (s *stubVectorStore) SimilarChunks(_ context.Context, ownerID uuid.UUID, _ []float32, limit int) ([]ChunkResult, error) {
	s.lastOwner = ownerID
	s.lastLimit = limit
	if limit < len(s.results) {
		return s.results[:limit], nil
	}
	return s.results, nil
}

func TestRetrieveScalesWithComplexity(t *testing.T) {
	store := &stubVectorStore{}
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2}}
	retriever := NewRetriever(store, embedder)
	owner := uuid.New()

	if _, err := retriever.Retrieve(context.Background(), owner, "cash balance", ComplexityStandard); err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if store.lastLimit != 5 {
		t.Errorf("standard query requested k=%d, want 5", store.lastLimit)
	}
	if store.lastOwner != owner {
		t.Errorf("owner not threaded through: %s", store.lastOwner)
	}

	if _, err := retriever.Retrieve(context.Background(), owner, "compare revenue trends", ComplexityHigh); err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if store.lastLimit != 15 {
		t.Errorf("complex query requested k=%d, want 15", store.lastLimit)
	}
	if embedder.calls != 2 {
		t.Errorf("query embedded %d times, want 2", embedder.calls)
	}
}

func TestBuildDocumentBlockTruncates(t *testing.T) {
	chunks := []ChunkResult{
		{Content: strings.Repeat("a", 600)},
		{Content: "short"},
	}

	block := BuildDocumentBlock(chunks, TruncateLimit(ComplexityStandard))
	if !strings.Contains(block, "--- Document Chunk ---") {
		t.Error("expected chunk separator in block")
	}
	if !strings.Contains(block, strings.Repeat("a", 400)+"...") {
		t.Error("expected long chunk truncated at 400 chars")
	}
	if strings.Contains(block, strings.Repeat("a", 401)) {
		t.Error("long chunk not truncated")
	}
	if !strings.Contains(block, "short") {
		t.Error("short chunk missing")
	}
}

func TestBuildDocumentBlockEmpty(t *testing.T) {
	if got := BuildDocumentBlock(nil, 400); got != "" {
		t.Errorf("empty chunk list rendered %q", got)
	}
}
