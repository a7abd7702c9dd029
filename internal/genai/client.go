package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spec-kit/workaid/internal/config"
)

// ErrGenerationFailed signals that all generation attempts were
// exhausted against a transiently overloaded upstream.
var ErrGenerationFailed = errors.New("generation failed")

// Embedder produces a fixed-length vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a free-text completion from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// completionAPI is the slice of the go-openai client surface the
// gateway depends on.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Client wraps the hosted generative-language model behind the
// Embedder and Generator contracts.
type Client struct {
	api         completionAPI
	logger      *zap.Logger
	cfg         config.OpenAIConfig
	maxAttempts int
	backoffBase time.Duration
}

// NewClient builds the gateway from configuration.
func NewClient(cfg config.OpenAIConfig, ai config.AIConfig, logger *zap.Logger) *Client {
	return newClient(openai.NewClient(cfg.APIKey), cfg, ai, logger)
}

func newClient(api completionAPI, cfg config.OpenAIConfig, ai config.AIConfig, logger *zap.Logger) *Client {
	maxAttempts := ai.GenerateMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	backoff := ai.GenerateBackoffBase
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Client{
		api:         api,
		logger:      logger,
		cfg:         cfg,
		maxAttempts: maxAttempts,
		backoffBase: backoff,
	}
}

// Embed returns the embedding vector for text. A single call, no
// retry; any failure propagates.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.cfg.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned")
	}
	embedding := resp.Data[0].Embedding
	if c.cfg.EmbeddingDims > 0 && len(embedding) != c.cfg.EmbeddingDims {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(embedding), c.cfg.EmbeddingDims)
	}
	return embedding, nil
}

// Generate calls the completion endpoint. Transient upstream overload
// is retried with exponential backoff (base delay doubling per
// attempt); exhaustion surfaces as ErrGenerationFailed. Non-transient
// errors raise immediately.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	delay := c.backoffBase
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying generation",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			if !isTransient(err) {
				return "", fmt.Errorf("create completion: %w", err)
			}
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("no completion choices returned")
		}
		return resp.Choices[0].Message.Content, nil
	}

	c.logger.Error("generation attempts exhausted",
		zap.Int("attempts", c.maxAttempts),
		zap.Error(lastErr))
	return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
}

// isTransient reports whether the upstream error carries a
// transient-overload signature worth retrying.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "service unavailable") || strings.Contains(msg, "overloaded")
}
