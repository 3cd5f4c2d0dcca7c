package jina

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"docintel-be/pkg/embedding"
)

const (
	DefaultBaseURL = "https://api.jina.ai/v1/embeddings"
	DefaultModel   = "jina-embeddings-v2-base-en"
)

type JinaProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewJinaProvider(apiKey, baseURL, model string, client *http.Client) (*JinaProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &embedding.ConfigurationError{Provider: "jina", Setting: "JINA_API_KEY", Err: embedding.ErrMissingCredential}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if client == nil {
		client = embedding.NewHTTPClient()
	}
	return &JinaProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  client,
	}, nil
}

func (p *JinaProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var res embeddingResponse
	err := embedding.PostJSON(ctx, p.client, "jina", p.baseURL,
		map[string]string{"Authorization": fmt.Sprintf("Bearer %s", p.apiKey)},
		embeddingRequest{Model: p.model, Input: texts},
		&res,
	)
	if err != nil {
		return nil, err
	}

	if res.Error != nil {
		return nil, &embedding.EmbeddingError{Provider: "jina", Err: fmt.Errorf("%s", res.Error.Message)}
	}

	// Rows may arrive out of order; index points back at the input and must
	// cover 0..n-1 exactly once.
	out := make([][]float32, len(res.Data))
	seen := make([]bool, len(res.Data))
	for _, d := range res.Data {
		if d.Index < 0 || d.Index >= len(out) || seen[d.Index] {
			return nil, &embedding.EmbeddingError{
				Provider: "jina",
				Err:      fmt.Errorf("%w: row index %d out of range or repeated for %d rows", embedding.ErrBadResponse, d.Index, len(out)),
			}
		}
		seen[d.Index] = true
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (p *JinaProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	out, err := p.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(out) != 1 || len(out[0]) == 0 {
		return nil, &embedding.EmbeddingError{Provider: "jina", Err: fmt.Errorf("%w: empty embeddings", embedding.ErrBadResponse)}
	}
	return out[0], nil
}
