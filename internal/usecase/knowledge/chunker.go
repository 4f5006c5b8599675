package knowledge

import "strings"

// Default chunking parameters, in runes
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200

	// sentenceWindow is how far back from the chunk end a sentence boundary
	// is searched for
	sentenceWindow = 100
)

// ChunkText splits text into overlapping chunks, preferring to end a chunk
// at a sentence boundary found within the trailing window. Sizes count
// runes, not bytes, so multi-byte characters never straddle a boundary.
// Input shorter than the chunk size comes back as a single chunk.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}

	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) < chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(runes) {
		end := start + chunkSize

		// Prefer a sentence boundary in the trailing window
		if end < len(runes) {
			windowStart := start + chunkSize - sentenceWindow
			if windowStart < start {
				windowStart = start
			}
			if idx := lastPeriod(runes[windowStart:end]); idx >= 0 {
				boundary := windowStart + idx
				if boundary > start {
					end = boundary + 1
				}
			}
		}

		sliceEnd := end
		if sliceEnd > len(runes) {
			sliceEnd = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:sliceEnd])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - overlap
		if next <= start {
			next = sliceEnd
		}
		start = next
		if start >= len(runes) {
			break
		}
	}

	return chunks
}

// lastPeriod returns the index of the last '.' in the window, or -1
func lastPeriod(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' {
			return i
		}
	}
	return -1
}
