// Package embedding wraps an OpenAI-compatible embeddings endpoint (C1),
// batching requests, pacing them with a token bucket, and retrying
// transient failures once before surfacing a typed error.
package embedding

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/types"
	"github.com/icyhot/recall/internal/vectormath"
)

// Provider is the narrow embedding interface the rest of the engine
// depends on. Swapping providers means implementing this interface,
// not touching ingest, consolidation, or retrieval code.
type Provider interface {
	// Embed returns one L2-normalized vector per input text, in the
	// same order as texts. Empty input yields an empty result.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Client is the openai-compatible embedding provider.
type Client struct {
	api     *openai.Client
	model   openai.EmbeddingModel
	batch   int
	limiter *rate.Limiter
}

// New constructs a Client from configuration.
func New(cfg *config.EmbeddingConfig) *Client {
	oaiCfg := openai.DefaultConfig(cfg.APIKey)
	oaiCfg.BaseURL = cfg.BaseURL

	return &Client{
		api:     openai.NewClientWithConfig(oaiCfg),
		model:   openai.EmbeddingModel(cfg.Model),
		batch:   cfg.MaxBatchSize,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1),
	}
}

// Embed implements Provider. It chunks texts into batches of at most
// c.batch, preserving order across chunks, and L2-normalizes every
// returned vector before handing it back.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batch {
		end := start + c.batch
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := c.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (c *Client) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &types.ErrEmbeddingUnavailable{Cause: err}
	}

	resp, err := c.requestWithRetry(ctx, texts)
	if err != nil {
		return nil, &types.ErrEmbeddingUnavailable{Cause: err}
	}

	vecs := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vecs[d.Index] = vectormath.Normalize(d.Embedding)
	}
	return vecs, nil
}

// requestWithRetry issues the embeddings request, retrying exactly once
// on a rate-limit response (2s backoff) or a 5xx response (1s backoff).
func (c *Client) requestWithRetry(ctx context.Context, texts []string) (openai.EmbeddingResponse, error) {
	req := openai.EmbeddingRequestStrings{
		Input: texts,
		Model: c.model,
	}

	resp, err := c.api.CreateEmbeddings(ctx, req)
	if err == nil {
		return resp, nil
	}

	wait := retryWait(err)
	if wait == 0 {
		return openai.EmbeddingResponse{}, err
	}

	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return openai.EmbeddingResponse{}, ctx.Err()
	}

	return c.api.CreateEmbeddings(ctx, req)
}

// retryWait returns the backoff to apply before a single retry, or 0 if
// the error is not one we consider transient.
func retryWait(err error) time.Duration {
	var apiErr *openai.APIError
	if ok := asAPIError(err, &apiErr); ok {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return 2 * time.Second
		case apiErr.HTTPStatusCode >= 500:
			return 1 * time.Second
		}
	}
	return 0
}

func asAPIError(err error, target **openai.APIError) bool {
	apiErr, ok := err.(*openai.APIError)
	if ok {
		*target = apiErr
	}
	return ok
}
