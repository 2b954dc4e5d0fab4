// Package chat answers user questions by fusing indexed documents with
// live ledger data from Tally.
package chat

import "github.com/google/uuid"

// Source type tags carried on attributions.
const (
	SourceDocument      = "document"
	SourceTallyLive     = "tally_live_data"
	SourceTallyFastPath = "tally_fast_path"
)

// ChunkResult is one nearest-neighbor hit from the vector store.
type ChunkResult struct {
	DocumentID string
	ChunkIndex int
	Content    string
	Distance   float64
}

// Source is an attribution attached to an answer.
type Source struct {
	Type       string  `json:"type"`
	DocumentID string  `json:"document_id,omitempty"`
	ChunkIndex int     `json:"chunk_index,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
	Preview    string  `json:"preview,omitempty"`
	Detail     string  `json:"detail,omitempty"`
}

// Response is the assembled answer returned to the caller.
type Response struct {
	Answer          string
	Sources         []Source
	Charts          []Chart
	ContextUsed     bool
	ChunksRetrieved int
	ConversationID  uuid.UUID
}
