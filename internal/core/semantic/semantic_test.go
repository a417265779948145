package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockEmbedder struct {
	Vectors map[string][]float32
	Err     error
	Calls   int
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vectors[text], nil
}

type MockLLMClient struct {
	Response string
	Err      error
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	return m.Response, m.Err
}

func TestNeutral(t *testing.T) {
	s, ok := Neutral{}.Similarity(context.Background(), "a", "b")
	assert.Equal(t, NeutralScore, s)
	assert.False(t, ok)
}

func TestEmbeddingSimilarity(t *testing.T) {
	emb := &MockEmbedder{Vectors: map[string][]float32{
		"physics":  {1, 0},
		"optics":   {1, 1},
		"painting": {-1, 0},
		"nothing":  {0, 0},
	}}
	s := NewEmbeddingSimilarity(emb, nil)
	ctx := context.Background()

	got, ok := s.Similarity(ctx, "physics", "optics")
	assert.True(t, ok)
	assert.InDelta(t, 0.7071, got, 1e-4)

	got, ok = s.Similarity(ctx, "physics", "painting")
	assert.True(t, ok)
	assert.Equal(t, 0.0, got)

	_, ok = s.Similarity(ctx, "physics", "nothing")
	assert.False(t, ok)

	calls := emb.Calls
	s.Similarity(ctx, "physics", "optics")
	assert.Equal(t, calls, emb.Calls, "vectors are memoized")
}

func TestEmbeddingSimilarity_CacheIsBounded(t *testing.T) {
	emb := &MockEmbedder{Vectors: map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
		"c": {1, 1},
	}}
	s := NewEmbeddingSimilaritySize(emb, 2, nil)
	ctx := context.Background()

	s.Similarity(ctx, "a", "b")
	s.Similarity(ctx, "b", "c")
	assert.Equal(t, 2, s.CacheLen())

	// "a" was evicted by "c".
	calls := emb.Calls
	s.Similarity(ctx, "a", "c")
	assert.Equal(t, calls+1, emb.Calls)
	assert.Equal(t, 2, s.CacheLen())

	uncached := NewEmbeddingSimilaritySize(emb, 0, nil)
	_, ok := uncached.Similarity(ctx, "a", "b")
	assert.True(t, ok)
	assert.Equal(t, 0, uncached.CacheLen())
}

func TestEmbeddingSimilarity_ErrorIsNeutral(t *testing.T) {
	s := NewEmbeddingSimilarity(&MockEmbedder{Err: errors.New("quota")}, nil)
	got, ok := s.Similarity(context.Background(), "a", "b")
	assert.Equal(t, NeutralScore, got)
	assert.False(t, ok)

	var nilSim *EmbeddingSimilarity
	got, ok = nilSim.Similarity(context.Background(), "a", "b")
	assert.Equal(t, NeutralScore, got)
	assert.False(t, ok)
}

func TestInferContext(t *testing.T) {
	assert.Equal(t, "education research academic", InferContext("mit.edu"))
	assert.Equal(t, "academic research university", InferContext("ox.ac.uk"))
	assert.Equal(t, "commercial business technology", InferContext("Acme.COM"))
	assert.Equal(t, GeneralContext, InferContext("mail.ru"))
}

func TestContextPhraser(t *testing.T) {
	ctx := context.Background()

	p := NewContextPhraser(&MockLLMClient{Response: "```json\n{\"context\": \"Particle Physics  Research.\"}\n```"}, nil)
	assert.Equal(t, "particle physics research", p.Phrase(ctx, "cern.ch"))

	prose := NewContextPhraser(&MockLLMClient{Response: "It is probably a physics lab."}, nil)
	assert.Equal(t, GeneralContext, prose.Phrase(ctx, "cern.ch"))

	failing := NewContextPhraser(&MockLLMClient{Err: errors.New("down")}, nil)
	assert.Equal(t, "education research academic", failing.Phrase(ctx, "mit.edu"))

	noLLM := NewContextPhraser(nil, nil)
	assert.Equal(t, GeneralContext, noLLM.Phrase(ctx, "mail.ru"))
}
