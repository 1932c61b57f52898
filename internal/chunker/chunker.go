// Package chunker splits extracted text into overlapping fixed-size windows.
// Boundaries are purely positional and may split words.
package chunker

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docrag/internal/domain"
)

// Defaults used when configuration leaves the values unset.
const (
	DefaultSize    = 512
	DefaultOverlap = 50
)

// Segment is one window. Offsets are rune offsets: [CharStart, CharEnd).
type Segment struct {
	Text      string
	CharStart int
	CharEnd   int
}

// Chunker holds a validated window configuration.
type Chunker struct {
	size    int
	overlap int
}

// New validates the configuration.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size %d: %w", size, domain.ErrInvalidConfiguration)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap %d with chunk size %d: %w", overlap, size, domain.ErrInvalidConfiguration)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the window length in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk slides a window of size runes advancing by size-overlap until the window
// start reaches the end of text. Whitespace-only windows are skipped.
func (c *Chunker) Chunk(text string) []Segment {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	step := c.size - c.overlap
	out := make([]Segment, 0, n/step+1)
	for start := 0; start < n; start += step {
		end := min(start+c.size, n)
		s := string(runes[start:end])
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, Segment{Text: s, CharStart: start, CharEnd: end})
	}
	return out
}
