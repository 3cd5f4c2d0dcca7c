package bootstrap

import (
	"testing"
	"time"

	"docintel-be/internal/config"
	"docintel-be/pkg/embedding"
	"docintel-be/pkg/embedding/jina"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name    string
		ai      config.AIConfig
		keys    config.APIKeys
		want    interface{}
		wantErr bool
	}{
		{name: "huggingface", ai: config.AIConfig{EmbeddingProvider: "huggingface"}, keys: config.APIKeys{HuggingFace: "hf"}, want: &embedding.HuggingFaceProvider{}},
		{name: "jina", ai: config.AIConfig{EmbeddingProvider: "jina"}, keys: config.APIKeys{Jina: "j"}, want: &jina.JinaProvider{}},
		{name: "gemini", ai: config.AIConfig{EmbeddingProvider: "gemini"}, keys: config.APIKeys{GoogleGemini: "g"}, want: &embedding.GeminiProvider{}},
		{name: "ollama", ai: config.AIConfig{EmbeddingProvider: "ollama", OllamaBaseURL: "http://localhost:11434", OllamaModel: "nomic-embed-text"}, want: &embedding.OllamaProvider{}},
		{name: "rate limited", ai: config.AIConfig{EmbeddingProvider: "ollama", RequestsPerSecond: 2, RequestBurst: 1}, want: &embedding.RateLimited{}},
		{name: "missing key", ai: config.AIConfig{EmbeddingProvider: "huggingface"}, wantErr: true},
		{name: "unknown", ai: config.AIConfig{EmbeddingProvider: "word2vec"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.ai.EmbeddingTimeout = 5 * time.Second
			cfg := &config.Config{Ai: tt.ai, Keys: tt.keys}

			p, err := NewEmbeddingProvider(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}

func TestNewEmbeddingProvider_MissingKeyIsConfigurationError(t *testing.T) {
	_, err := NewEmbeddingProvider(&config.Config{Ai: config.AIConfig{EmbeddingProvider: "jina"}})

	var cfgErr *embedding.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "jina", cfgErr.Provider)
}
