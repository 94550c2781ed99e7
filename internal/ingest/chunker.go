// Package ingest turns uploaded files into ordered text chunks.
package ingest

// Chunker splits text into overlapping fixed-size character windows.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in characters).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk normalizes text with Preprocess and slices it into windows of chunkSize
// characters, each starting chunkSize-chunkOverlap characters after the previous one.
// Windows may split words. Returns nil for empty or whitespace-only text.
func (c *Chunker) Chunk(text string) []string {
	runes := []rune(Preprocess(text))
	if len(runes) == 0 {
		return nil
	}
	size := c.chunkSize
	if size <= 0 {
		size = 1
	}
	step := size - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	chunks := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
