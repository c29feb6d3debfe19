// Package chunker splits cleaned document text into overlapping
// fixed-size windows suitable for embedding.
package chunker

const (
	DefaultSize    = 500
	DefaultOverlap = 50
)

// WindowChunker produces character windows of at most size runes with
// overlap runes shared between consecutive windows.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker creates a chunker with the given window size and
// overlap. Non-positive size falls back to the default; overlap is
// clamped into [0, size).
func NewWindowChunker(size, overlap int) *WindowChunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &WindowChunker{size: size, overlap: overlap}
}

// Size returns the configured window size.
func (c *WindowChunker) Size() int { return c.size }

// Overlap returns the configured overlap.
func (c *WindowChunker) Overlap() int { return c.overlap }

// Chunk splits text into overlapping windows. Each chunk is at most
// size runes long, consecutive chunks share overlap runes, and the
// non-overlapping spans concatenate back to the original text. Empty
// input yields no chunks.
func (c *WindowChunker) Chunk(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	stride := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
