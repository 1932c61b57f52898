// Package result holds scored retrieval hits.
package result

import (
	"sort"

	"github.com/kailas-cloud/docrag/internal/domain/chunk"
)

// Result is a single retrieval hit. Score is in [0,1].
type Result struct {
	Chunk chunk.Chunk
	Score float64
}

// New creates a retrieval result.
func New(c chunk.Chunk, score float64) Result {
	return Result{Chunk: c, Score: score}
}

// Less orders results by descending score, then ascending document id and ordinal.
func Less(a, b Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Chunk.DocumentID != b.Chunk.DocumentID {
		return a.Chunk.DocumentID < b.Chunk.DocumentID
	}
	return a.Chunk.Ordinal < b.Chunk.Ordinal
}

// Sort orders results in place using Less.
func Sort(rs []Result) {
	sort.SliceStable(rs, func(i, j int) bool { return Less(rs[i], rs[j]) })
}
