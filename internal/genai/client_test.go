package genai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/workaid/internal/config"
)

type fakeAPI struct {
	completions []completionResult
	calls       int
	embedding   []float32
	embedErr    error
	embedCalls  int
}

type completionResult struct {
	content string
	err     error
}

func (f *fakeAPI) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	result := f.completions[f.calls]
	f.calls++
	if result.err != nil {
		return openai.ChatCompletionResponse{}, result.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: result.content}},
		},
	}, nil
}

func (f *fakeAPI) CreateEmbeddings(_ context.Context, _ openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return openai.EmbeddingResponse{}, f.embedErr
	}
	return openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: f.embedding}},
	}, nil
}

func testClient(t *testing.T, api completionAPI) *Client {
	t.Helper()
	return newClient(api,
		config.OpenAIConfig{ChatModel: "test-model", EmbeddingModel: "test-embed", EmbeddingDims: 3},
		config.AIConfig{GenerateMaxAttempts: 3, GenerateBackoffBase: time.Millisecond},
		zaptest.NewLogger(t))
}

func overloadedErr() error {
	return &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable, Message: "service unavailable"}
}

func TestGenerateRetriesTransientOverload(t *testing.T) {
	api := &fakeAPI{completions: []completionResult{
		{err: overloadedErr()},
		{err: overloadedErr()},
		{content: "recovered answer"},
	}}

	out, err := testClient(t, api).Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "recovered answer", out)
	assert.Equal(t, 3, api.calls)
}

func TestGenerateExhaustsAttempts(t *testing.T) {
	api := &fakeAPI{completions: []completionResult{
		{err: overloadedErr()},
		{err: overloadedErr()},
		{err: overloadedErr()},
	}}

	_, err := testClient(t, api).Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 3, api.calls)
}

func TestGenerateDoesNotRetryNonTransient(t *testing.T) {
	api := &fakeAPI{completions: []completionResult{
		{err: &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "invalid api key"}},
	}}

	_, err := testClient(t, api).Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 1, api.calls)
}

func TestGenerateStopsOnContextCancel(t *testing.T) {
	api := &fakeAPI{completions: []completionResult{
		{err: overloadedErr()},
		{content: "never reached"},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(t, api).Generate(ctx, "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, api.calls)
}

func TestEmbedValidatesDimensions(t *testing.T) {
	api := &fakeAPI{embedding: []float32{0.1, 0.2, 0.3}}
	vec, err := testClient(t, api).Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 3)

	api.embedding = []float32{0.1}
	_, err = testClient(t, api).Embed(context.Background(), "hello")
	assert.Error(t, err)
}

func TestEmbedPropagatesFailure(t *testing.T) {
	api := &fakeAPI{embedErr: errors.New("quota exceeded")}
	_, err := testClient(t, api).Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 1, api.embedCalls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}))
	assert.True(t, isTransient(errors.New("model is overloaded, try again")))
	assert.False(t, isTransient(errors.New("invalid request")))
	assert.False(t, isTransient(&openai.APIError{HTTPStatusCode: http.StatusBadRequest}))
}
