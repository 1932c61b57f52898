// Package chunk holds the unit of embedding and retrieval.
package chunk

import "fmt"

// Chunk is a contiguous slice of a document's extracted text with its embedding.
// Offsets are rune offsets into the extracted text: [CharStart, CharEnd).
type Chunk struct {
	ID         string
	DocumentID string
	Source     string // filename of the owning document, denormalized for prompt tagging
	Ordinal    int
	Text       string
	Vector     []float32
	CharStart  int
	CharEnd    int
}

// ID builds the deterministic chunk id for a document ordinal, so re-ingestion
// overwrites rather than duplicates.
func ID(documentID string, ordinal int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, ordinal)
}

// Validate checks structural invariants before indexing.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("chunk ID is required")
	}
	if c.DocumentID == "" {
		return fmt.Errorf("chunk %s: document ID is required", c.ID)
	}
	if c.Ordinal < 0 {
		return fmt.Errorf("chunk %s: ordinal must be non-negative", c.ID)
	}
	if c.Text == "" {
		return fmt.Errorf("chunk %s: text is required", c.ID)
	}
	if len(c.Vector) == 0 {
		return fmt.Errorf("chunk %s: vector is required", c.ID)
	}
	if c.CharStart < 0 || c.CharEnd <= c.CharStart {
		return fmt.Errorf("chunk %s: invalid offsets [%d,%d)", c.ID, c.CharStart, c.CharEnd)
	}
	return nil
}

// Clone returns a deep copy; the vector slice is not shared.
func (c *Chunk) Clone() Chunk {
	out := *c
	if c.Vector != nil {
		out.Vector = make([]float32, len(c.Vector))
		copy(out.Vector, c.Vector)
	}
	return out
}

// Stats summarises indexed chunks.
type Stats struct {
	TotalChunks     int
	UniqueDocuments int
}
