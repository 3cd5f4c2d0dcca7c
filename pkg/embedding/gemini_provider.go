package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	DefaultGeminiModel   = "text-embedding-004"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// GeminiMaxBatch is the most requests batchEmbedContents accepts.
	GeminiMaxBatch = 100
)

type GeminiProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewGeminiProvider(apiKey, baseURL, model string, client *http.Client) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, missingCredential("gemini", "GOOGLE_GEMINI_API_KEY")
	}
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  client,
	}, nil
}

func (p *GeminiProvider) headers() map[string]string {
	return map[string]string{"x-goog-api-key": p.apiKey}
}

func (p *GeminiProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if len(texts) > GeminiMaxBatch {
		return nil, &EmbeddingError{
			Provider: "gemini",
			Err:      fmt.Errorf("%w: %d texts, gemini accepts at most %d per call", ErrBatchTooLarge, len(texts), GeminiMaxBatch),
		}
	}

	req := BatchEmbeddingRequest{Requests: make([]EmbeddingRequest, len(texts))}
	for i, text := range texts {
		req.Requests[i] = newEmbeddingRequest(p.model, text, TaskRetrievalDocument)
	}

	var res BatchEmbeddingResponse
	endpoint := fmt.Sprintf("%s/models/%s:batchEmbedContents", p.baseURL, p.model)
	if err := PostJSON(ctx, p.client, "gemini", endpoint, p.headers(), req, &res); err != nil {
		return nil, err
	}

	out := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

func (p *GeminiProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var res EmbeddingResponse
	endpoint := fmt.Sprintf("%s/models/%s:embedContent", p.baseURL, p.model)
	if err := PostJSON(ctx, p.client, "gemini", endpoint, p.headers(), newEmbeddingRequest(p.model, text, TaskRetrievalQuery), &res); err != nil {
		return nil, err
	}
	if len(res.Embedding.Values) == 0 {
		return nil, &EmbeddingError{Provider: "gemini", Err: fmt.Errorf("%w: empty embedding", ErrBadResponse)}
	}
	return res.Embedding.Values, nil
}
