package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 60 * time.Second

func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// PostJSON sends in as a JSON body and decodes a 2xx response into out.
// Every failure is returned as *EmbeddingError.
func PostJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &EmbeddingError{Provider: provider, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &EmbeddingError{Provider: provider, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = NewHTTPClient()
	}
	res, err := client.Do(req)
	if err != nil {
		return &EmbeddingError{Provider: provider, Err: err}
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return &EmbeddingError{Provider: provider, StatusCode: res.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &EmbeddingError{Provider: provider, StatusCode: res.StatusCode, Err: errors.New(truncate(string(resBytes), 512))}
	}

	if err := json.Unmarshal(resBytes, out); err != nil {
		return &EmbeddingError{Provider: provider, StatusCode: res.StatusCode, Err: fmt.Errorf("%w: %v", ErrBadResponse, err)}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
