package ingestion

import (
	"testing"

	"github.com/google/uuid"
)

func TestChunkIDStable(t *testing.T) {
	docID := uuid.MustParse("7f8b9c1d-2e3f-4a5b-8c9d-0e1f2a3b4c5d")

	first := ChunkID(docID, 0)
	second := ChunkID(docID, 0)
	if first != second {
		t.Errorf("same document and index produced different ids: %s vs %s", first, second)
	}

	if ChunkID(docID, 0) == ChunkID(docID, 1) {
		t.Error("different indexes must produce different ids")
	}
	if ChunkID(docID, 0) == ChunkID(uuid.New(), 0) {
		t.Error("different documents must produce different ids")
	}
}
