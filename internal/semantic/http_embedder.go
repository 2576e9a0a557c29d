package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gregcmartin/doppel/internal/models"
	"github.com/sirupsen/logrus"
)

var _ Embedder = (*HTTPEmbedder)(nil)

// HTTPEmbedder calls an OpenAI-style embeddings endpoint
// (POST {base}/embeddings). Any transport failure, non-2xx status or
// malformed response wraps models.ErrEmbeddingUnavailable.
type HTTPEmbedder struct {
	logger  *logrus.Logger
	client  *http.Client
	baseURL string
	model   string
	apiKey  string

	mu         sync.Mutex
	dimensions int
}

// NewHTTPEmbedder creates a new HTTP embedding client. The API key may be
// empty for endpoints that do not require authentication.
func NewHTTPEmbedder(logger *logrus.Logger, baseURL, model, apiKey string, timeout time.Duration) *HTTPEmbedder {
	return &HTTPEmbedder{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed requests an embedding vector for the given text
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", models.ErrEmbeddingUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused before reporting.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: endpoint returned status %d", models.ErrEmbeddingUnavailable, resp.StatusCode)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", models.ErrEmbeddingUnavailable, err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: response contained no embedding", models.ErrEmbeddingUnavailable)
	}

	vector := parsed.Data[0].Embedding
	e.mu.Lock()
	e.dimensions = len(vector)
	e.mu.Unlock()

	e.logger.Debugf("Embedded %d characters into %d dimensions", len(text), len(vector))
	return vector, nil
}

// Dimensions returns the vector length observed on the last successful
// embedding, or 0 before the first call
func (e *HTTPEmbedder) Dimensions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimensions
}

// Model returns the configured model identifier
func (e *HTTPEmbedder) Model() string {
	return e.model
}
