package chunk

import "testing"

func validChunk() Chunk {
	return Chunk{
		ID:         ID("doc-1", 0),
		DocumentID: "doc-1",
		Ordinal:    0,
		Text:       "hello",
		Vector:     []float32{0.1, 0.2},
		CharStart:  0,
		CharEnd:    5,
	}
}

func TestID(t *testing.T) {
	if got := ID("doc-1", 2); got != "doc-1_chunk_2" {
		t.Errorf("ID() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Chunk)
		ok     bool
	}{
		{"valid", func(*Chunk) {}, true},
		{"no id", func(c *Chunk) { c.ID = "" }, false},
		{"no document", func(c *Chunk) { c.DocumentID = "" }, false},
		{"negative ordinal", func(c *Chunk) { c.Ordinal = -1 }, false},
		{"empty text", func(c *Chunk) { c.Text = "" }, false},
		{"no vector", func(c *Chunk) { c.Vector = nil }, false},
		{"inverted offsets", func(c *Chunk) { c.CharStart, c.CharEnd = 5, 5 }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validChunk()
			tc.mutate(&c)
			err := c.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestClone_CopiesVector(t *testing.T) {
	c := validChunk()
	cp := c.Clone()
	cp.Vector[0] = 9
	if c.Vector[0] != 0.1 {
		t.Errorf("clone shares vector backing array")
	}
}
