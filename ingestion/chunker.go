// Package ingestion chunks documents, embeds the chunks and persists
// them for retrieval.
package ingestion

import "strings"

// boundary markers tried in order when trimming a window to a natural
// break point.
var boundaryMarkers = []string{"\n\n", "\n", ". ", " "}

// Split cuts text into chunks of at most maxSize characters. Windows are
// trimmed back to the best paragraph/newline/sentence/word boundary in
// their second half; consecutive chunks share roughly overlap characters.
// Deterministic: same input, same output.
func Split(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= maxSize {
		overlap = 0
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= maxSize {
		return []string{trimmed}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + maxSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = adjustBoundary(text, start, end)
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(text) {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// SplitBounded is Split with a hard cap on chunk count. The bool reports
// whether the tail was dropped.
func SplitBounded(text string, maxSize, overlap, maxChunks int) ([]string, bool) {
	chunks := Split(text, maxSize, overlap)
	if maxChunks > 0 && len(chunks) > maxChunks {
		return chunks[:maxChunks], true
	}
	return chunks, false
}

// adjustBoundary moves end backward to the latest boundary marker found
// in the second half of the window, keeping the hard cut as fallback.
func adjustBoundary(text string, start, end int) int {
	window := text[start:end]
	floor := len(window) / 2

	for _, marker := range boundaryMarkers {
		idx := strings.LastIndex(window, marker)
		if idx > floor {
			return start + idx + len(marker)
		}
	}
	return end
}
