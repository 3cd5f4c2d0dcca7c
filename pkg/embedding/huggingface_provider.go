package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	DefaultHuggingFaceModel   = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultHuggingFaceBaseURL = "https://router.huggingface.co/hf-inference/models"
)

// HuggingFaceProvider calls the hosted feature-extraction pipeline.
type HuggingFaceProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type huggingFaceRequest struct {
	Inputs  interface{}            `json:"inputs"`
	Options map[string]interface{} `json:"options,omitempty"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model string, client *http.Client) (*HuggingFaceProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, missingCredential("huggingface", "HF_API_KEY")
	}
	if baseURL == "" {
		baseURL = DefaultHuggingFaceBaseURL
	}
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  client,
	}, nil
}

func (p *HuggingFaceProvider) endpoint() string {
	return fmt.Sprintf("%s/%s/pipeline/feature-extraction", p.baseURL, p.model)
}

func (p *HuggingFaceProvider) post(ctx context.Context, inputs interface{}) (interface{}, error) {
	var out interface{}
	err := PostJSON(ctx, p.client, "huggingface", p.endpoint(),
		map[string]string{"Authorization": "Bearer " + p.apiKey},
		huggingFaceRequest{Inputs: inputs, Options: map[string]interface{}{"wait_for_model": true}},
		&out,
	)
	return out, err
}

func (p *HuggingFaceProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out, err := p.post(ctx, texts)
	if err != nil {
		return nil, err
	}

	vectors, err := CoerceBatch(out, len(texts))
	if err != nil {
		return nil, &EmbeddingError{Provider: "huggingface", Err: err}
	}
	return vectors, nil
}

func (p *HuggingFaceProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	out, err := p.post(ctx, text)
	if err != nil {
		return nil, err
	}

	vec, err := CoerceVector(out)
	if err != nil {
		return nil, &EmbeddingError{Provider: "huggingface", Err: err}
	}
	return vec, nil
}
