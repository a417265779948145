package llm

import (
	"context"
	"errors"
)

var (
	// ErrNoResponse is returned when a provider answers without any content.
	ErrNoResponse = errors.New("llm: empty response")
	// ErrEmbeddingsUnsupported is returned by providers without an embedding API.
	ErrEmbeddingsUnsupported = errors.New("llm: embeddings not supported by provider")
)

// LLMClient generates short text completions, used to phrase research contexts.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderClient turns text into a vector for semantic similarity.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
