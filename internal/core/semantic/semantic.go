// Package semantic wraps optional embedding models behind a capability
// interface that degrades to a neutral score when no model is configured.
package semantic

import (
	"context"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/agenthands/idresolve/internal/llm"
	"github.com/agenthands/idresolve/internal/logging"
)

// NeutralScore is returned whenever similarity cannot be computed.
const NeutralScore = 0.5

// DefaultCacheSize bounds the number of memoized embeddings.
const DefaultCacheSize = 1024

// Similarity scores the semantic closeness of two texts in [0,1]. The boolean
// is false when the score is the neutral fallback.
type Similarity interface {
	Similarity(ctx context.Context, a, b string) (float64, bool)
}

// Neutral is the no-model capability.
type Neutral struct{}

func (Neutral) Similarity(context.Context, string, string) (float64, bool) {
	return NeutralScore, false
}

// EmbeddingSimilarity is the cosine similarity of two embeddings, negative
// values clamped to 0. Vectors are memoized per text in an LRU cache holding
// at most DefaultCacheSize entries.
type EmbeddingSimilarity struct {
	Embedder llm.EmbedderClient
	Logger   *zap.Logger

	cache *lru.Cache[string, []float32]
}

func NewEmbeddingSimilarity(embedder llm.EmbedderClient, logger *zap.Logger) *EmbeddingSimilarity {
	return NewEmbeddingSimilaritySize(embedder, DefaultCacheSize, logger)
}

// NewEmbeddingSimilaritySize is NewEmbeddingSimilarity with an explicit cache
// bound. A size below 1 disables memoization.
func NewEmbeddingSimilaritySize(embedder llm.EmbedderClient, size int, logger *zap.Logger) *EmbeddingSimilarity {
	e := &EmbeddingSimilarity{Embedder: embedder, Logger: logging.OrNop(logger)}
	if size > 0 {
		// lru.New only fails for non-positive sizes.
		e.cache, _ = lru.New[string, []float32](size)
	}
	return e
}

// CacheLen reports how many embeddings are memoized.
func (e *EmbeddingSimilarity) CacheLen() int {
	if e == nil || e.cache == nil {
		return 0
	}
	return e.cache.Len()
}

func (e *EmbeddingSimilarity) Similarity(ctx context.Context, a, b string) (float64, bool) {
	if e == nil || e.Embedder == nil || a == "" || b == "" {
		return NeutralScore, false
	}
	va, err := e.embed(ctx, a)
	if err != nil {
		logging.OrNop(e.Logger).Debug("embedding failed", zap.Error(err))
		return NeutralScore, false
	}
	vb, err := e.embed(ctx, b)
	if err != nil {
		logging.OrNop(e.Logger).Debug("embedding failed", zap.Error(err))
		return NeutralScore, false
	}
	cos, ok := Cosine(va, vb)
	if !ok {
		return NeutralScore, false
	}
	return max(0, min(1, cos)), true
}

func (e *EmbeddingSimilarity) embed(ctx context.Context, text string) ([]float32, error) {
	if e.cache != nil {
		if v, ok := e.cache.Get(text); ok {
			return v, nil
		}
	}
	v, err := e.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Add(text, v)
	}
	return v, nil
}

// Cosine returns the cosine similarity of two equal-length vectors. It
// reports false for empty, mismatched or zero vectors.
func Cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
