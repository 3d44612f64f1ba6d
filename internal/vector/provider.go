// Package vector implements the Vector Index: per-symbol embedding
// storage keyed in the graph store, a batched embedding request path, and
// a compact pure-Go brute-force/HNSW-lite cosine index.
package vector

import (
	"context"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Provider generates an embedding vector for a single piece of text. A
// real HTTP backend (Ollama, OpenAI-compatible, etc.) can be swapped in
// without touching the batching or indexing code.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HashProvider is a deterministic, offline embedding provider: it derives a
// unit vector from a content hash rather than calling an external service.
// It is the default provider when no real embedder is configured, so
// `analyze` always produces a usable vector index; the vector index is
// best-effort, never a hard external dependency.
type HashProvider struct {
	dimension int
}

// NewHashProvider returns a HashProvider producing vectors of the given
// dimension.
func NewHashProvider(dimension int) *HashProvider {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashProvider{dimension: dimension}
}

// Embed derives a deterministic pseudo-embedding from text by hashing
// successively-salted copies of it into one float per dimension, then
// L2-normalizing. Two calls with the same text always return the same
// vector.
func (p *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dimension)
	buf := make([]byte, 0, len(text)+8)
	for i := range vec {
		buf = buf[:0]
		buf = append(buf, byte(i), byte(i>>8))
		buf = append(buf, text...)
		h := xxhash.Sum64(buf)
		// Map the hash into [-1, 1].
		vec[i] = float32(int64(h&0xFFFFFF))/float32(0xFFFFFF)*2 - 1
	}
	return normalize(vec), nil
}

// normalize returns v scaled to unit L2 norm, or v unchanged if it is (near)
// the zero vector.
func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq <= 1e-12 {
		return v
	}
	norm := float32(1.0 / math.Sqrt(sumSq))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x * norm
	}
	return out
}
