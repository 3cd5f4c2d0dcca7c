package embedding

import "context"

// EmbeddingProvider turns text into fixed-dimension vectors.
type EmbeddingProvider interface {
	// EmbedDocuments issues one batched call and returns one vector per
	// input, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
