package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmbeddingProvider is a testify mock of embedding.EmbeddingProvider.
type MockEmbeddingProvider struct {
	mock.Mock
}

func (m *MockEmbeddingProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	var out [][]float32
	if v := args.Get(0); v != nil {
		out = v.([][]float32)
	}
	return out, args.Error(1)
}

func (m *MockEmbeddingProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	var out []float32
	if v := args.Get(0); v != nil {
		out = v.([]float32)
	}
	return out, args.Error(1)
}
