package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hr-engine/internal/engine"
	"hr-engine/pkg/httpclient"

	"go.uber.org/zap"
)

const defaultEndpoint = "https://api.openai.com/v1/embeddings"

// Service calls an OpenAI-compatible embeddings endpoint and satisfies
// engine.Embedder. The dimension is fixed per deployment; changing it requires
// rebuilding the index.
type Service struct {
	endpoint  string
	apiKey    string
	model     string
	dimension int
	client    *httpclient.Client
	logger    *zap.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithEndpoint points the service at a compatible non-OpenAI endpoint.
func WithEndpoint(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.endpoint = url
		}
	}
}

// WithTimeout sets the per-call HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.client = httpclient.New(timeout)
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(apiKey, model string, dimension int, opts ...Option) *Service {
	s := &Service{
		endpoint:  defaultEndpoint,
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		client:    httpclient.New(30 * time.Second),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embed converts text to a fixed-length vector. Empty input is an embedding
// failure (the unit is skippable); transport and HTTP failures mean the
// collaborator is unreachable and the caller may retry.
func (s *Service) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", engine.ErrEmbedding)
	}

	requestBody := map[string]interface{}{
		"input": text,
		"model": s.model,
	}
	if s.dimension > 0 {
		requestBody["dimensions"] = s.dimension
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", engine.ErrEmbedding, err)
	}

	headers := map[string]string{}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	resp, err := s.client.PostJSON(ctx, s.endpoint, headers, jsonData)
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings request: %v", engine.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: embedding API error: %d - %s",
			engine.ErrCollaboratorUnavailable, resp.StatusCode, string(body))
	}

	var result struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode embeddings response: %v", engine.ErrCollaboratorUnavailable, err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", engine.ErrEmbedding)
	}

	vec := result.Data[0].Embedding
	if s.dimension > 0 && len(vec) != s.dimension {
		return nil, fmt.Errorf("%w: got %d dimensions, expected %d", engine.ErrEmbedding, len(vec), s.dimension)
	}
	return vec, nil
}
