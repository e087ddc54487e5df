// Package chunker splits document text into fixed-size chunks for storage
// and downstream ingestion.
package chunker

// DefaultChunkSize is the chunk length in runes. Sized for the RAG
// embedding model's context window.
const DefaultChunkSize = 1000

// Split cuts content into consecutive chunks of at most size runes.
// Splitting on runes keeps multi-byte characters intact. Empty content
// yields no chunks.
func Split(content string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	if content == "" {
		return nil
	}

	runes := []rune(content)

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
