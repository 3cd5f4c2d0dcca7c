package bootstrap

import (
	"fmt"

	"docintel-be/internal/config"
	"docintel-be/pkg/embedding"
	"docintel-be/pkg/embedding/jina"
)

// NewEmbeddingProvider selects the provider named by EMBEDDING_PROVIDER and
// wraps it in the configured rate limit.
func NewEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	client := embedding.NewHTTPClient()
	if cfg.Ai.EmbeddingTimeout > 0 {
		client.Timeout = cfg.Ai.EmbeddingTimeout
	}

	var (
		provider embedding.EmbeddingProvider
		err      error
	)
	switch cfg.Ai.EmbeddingProvider {
	case "huggingface", "":
		provider, err = embedding.NewHuggingFaceProvider(cfg.Keys.HuggingFace, cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel, client)
	case "jina":
		provider, err = jina.NewJinaProvider(cfg.Keys.Jina, cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel, client)
	case "gemini":
		provider, err = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel, client)
	case "ollama":
		model := cfg.Ai.OllamaModel
		if cfg.Ai.EmbeddingModel != "" {
			model = cfg.Ai.EmbeddingModel
		}
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, model, client)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Ai.EmbeddingProvider)
	}
	if err != nil {
		return nil, err
	}

	return embedding.NewRateLimited(provider, cfg.Ai.RequestsPerSecond, cfg.Ai.RequestBurst), nil
}
