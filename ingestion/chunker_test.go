package ingestion

import (
	"strings"
	"testing"
)

func TestSplitEmptyInput(t *testing.T) {
	if got := Split("", 1000, 200); got != nil {
		t.Errorf("Split(empty) = %v, want nil", got)
	}
	if got := Split("   \n\t  ", 1000, 200); got != nil {
		t.Errorf("Split(whitespace) = %v, want nil", got)
	}
}

func TestSplitShortInputSingleChunk(t *testing.T) {
	chunks := Split("opening balance of the cash ledger", 1000, 200)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != "opening balance of the cash ledger" {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplitRespectsMaxSize(t *testing.T) {
	text := strings.Repeat("the balance sheet shows revenue growth across segments. ", 200)

	chunks := Split(text, 1000, 200)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 1000 {
			t.Errorf("chunk %d has %d chars, exceeds max 1000", i, len(chunk))
		}
		if chunk == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("paragraph one.\n\nparagraph two with more detail. ", 100)

	first := Split(text, 500, 100)
	second := Split(text, 500, 100)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitOverlapSharesContent(t *testing.T) {
	// Uniform text without boundaries forces hard cuts, so the overlap
	// window is carried verbatim into the next chunk.
	text := strings.Repeat("x", 3000)

	chunks := Split(text, 1000, 200)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev, curr := chunks[i-1], chunks[i]
		tail := prev[len(prev)-190:]
		if !strings.Contains(curr, tail[:50]) {
			t.Errorf("chunk %d does not share overlap with its predecessor", i)
		}
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	para := strings.Repeat("a", 700)
	text := para + "\n\n" + strings.Repeat("b", 700)

	chunks := Split(text, 1000, 0)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0] != para {
		t.Errorf("first chunk should end at the paragraph break, got %d chars", len(chunks[0]))
	}
}

func TestSplitBoundedTruncates(t *testing.T) {
	text := strings.Repeat("y", 10_000)

	chunks, truncated := SplitBounded(text, 100, 0, 5)
	if !truncated {
		t.Error("expected truncated=true")
	}
	if len(chunks) != 5 {
		t.Errorf("got %d chunks, want 5", len(chunks))
	}

	chunks, truncated = SplitBounded("short", 100, 0, 5)
	if truncated {
		t.Error("expected truncated=false for short input")
	}
	if len(chunks) != 1 {
		t.Errorf("got %d chunks, want 1", len(chunks))
	}
}
