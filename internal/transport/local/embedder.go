// Package local provides an offline embedding provider based on feature hashing.
// It needs no model or network and is deterministic across processes.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/kailas-cloud/docrag/internal/domain"
)

// DefaultDimensions is used when the configuration leaves dimensions unset.
const DefaultDimensions = 384

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

// Embedder hashes word unigrams and bigrams into a fixed-size signed vector.
type Embedder struct {
	dimensions int
	stopwords  map[string]struct{}
}

// NewEmbedder creates a hashing embedder.
func NewEmbedder(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: dimensions, stopwords: defaultStopwords()}
}

// Dimensions returns the vector length.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Embed implements domain.Embedder. Token counts are reported as whitespace fields.
func (e *Embedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if err := domain.ValidateTexts([]string{text}); err != nil {
		return domain.EmbeddingResult{}, err
	}
	n := len(strings.Fields(text))
	return domain.EmbeddingResult{Embedding: e.vector(text), PromptTokens: n, TotalTokens: n}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	if err := domain.ValidateTexts(texts); err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		out.Embeddings[i] = e.vector(t)
		n := len(strings.Fields(t))
		out.PromptTokens += n
		out.TotalTokens += n
	}
	return out, nil
}

// HealthCheck always succeeds.
func (e *Embedder) HealthCheck(context.Context) error { return nil }

func (e *Embedder) vector(text string) []float32 {
	vec := make([]float64, e.dimensions)
	tokens := e.tokenize(text)
	for i, tok := range tokens {
		e.add(vec, tok, 1)
		if i > 0 {
			e.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	out := make([]float32, e.dimensions)
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

// add uses one hash for the bucket and its top bit for the sign.
func (e *Embedder) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

func (e *Embedder) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := e.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "has", "in", "is",
		"it", "its", "of", "on", "or", "that", "the", "this", "to", "was", "were", "will", "with",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
