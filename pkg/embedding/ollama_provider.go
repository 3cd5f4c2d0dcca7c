package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// OllamaProvider implements EmbeddingProvider for local Ollama models (e.g., nomic-embed-text)
type OllamaProvider struct {
	BaseURL string
	Model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL string, model string, client *http.Client) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &OllamaProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		client:  client,
	}
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func (p *OllamaProvider) embed(ctx context.Context, input []string) ([][]float32, error) {
	var res ollamaEmbedResponse
	endpoint := fmt.Sprintf("%s/api/embed", p.BaseURL)
	if err := PostJSON(ctx, p.client, "ollama", endpoint, nil, ollamaEmbedRequest{Model: p.Model, Input: input}, &res); err != nil {
		return nil, err
	}

	// Ollama returns float64; vectors are normalized so scores stay comparable
	// across models.
	out := make([][]float32, len(res.Embeddings))
	for i, row := range res.Embeddings {
		values := make([]float32, len(row))
		for j, v := range row {
			values[j] = float32(v)
		}
		out[i] = normalizeVector(values)
	}
	return out, nil
}

func (p *OllamaProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return p.embed(ctx, texts)
}

func (p *OllamaProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	out, err := p.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, &EmbeddingError{Provider: "ollama", Err: fmt.Errorf("%w: expected 1 embedding, got %d", ErrBadResponse, len(out))}
	}
	return out[0], nil
}
