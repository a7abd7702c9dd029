package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/workaid/internal/vector"
)

type fakeRetriever struct {
	byCollection map[string][]vector.SearchResult
	queries      []string
}

func (f *fakeRetriever) Query(_ context.Context, collection, text string, _ int) []vector.SearchResult {
	f.queries = append(f.queries, collection+":"+text)
	return f.byCollection[collection]
}

type fakeResponseCache struct {
	store map[string]string
}

func newFakeResponseCache() *fakeResponseCache {
	return &fakeResponseCache{store: map[string]string{}}
}

func (f *fakeResponseCache) Get(_ context.Context, key string) (string, bool) {
	val, ok := f.store[key]
	return val, ok
}

func (f *fakeResponseCache) Set(_ context.Context, key, value string) { f.store[key] = value }

func TestAnswererDeflectsOnEmptyContext(t *testing.T) {
	retriever := &fakeRetriever{byCollection: map[string][]vector.SearchResult{}}
	generator := &fakeGenerator{replies: []string{"should not be called"}}
	answerer := NewAnswerer(retriever, generator, newFakeResponseCache(), 5, zaptest.NewLogger(t))

	answer, err := answerer.Answer(context.Background(), "is there a gym in the office?")
	require.NoError(t, err)
	assert.Equal(t, DeflectionMessage, answer)
	assert.Zero(t, generator.calls)
	// Both collections were consulted before deflecting.
	assert.Contains(t, retriever.queries, vector.CollectionPolicies+":is there a gym in the office?")
	assert.Contains(t, retriever.queries, vector.CollectionFAQs+":is there a gym in the office?")
}

func TestAnswererGroundedAnswerIsCached(t *testing.T) {
	retriever := &fakeRetriever{byCollection: map[string][]vector.SearchResult{
		vector.CollectionPolicies: {{ID: "p1", Score: 0.9, Document: "VPN policy text"}},
		vector.CollectionFAQs:     {{ID: "f1", Score: 0.88, Document: "Q: vpn\nA: restart the client"}},
	}}
	generator := &fakeGenerator{replies: []string{"  Restart the VPN client and sign in again.  "}}
	answerer := NewAnswerer(retriever, generator, newFakeResponseCache(), 5, zaptest.NewLogger(t))
	ctx := context.Background()

	answer, err := answerer.Answer(ctx, "my vpn keeps dropping")
	require.NoError(t, err)
	assert.Equal(t, "Restart the VPN client and sign in again.", answer)
	assert.Equal(t, 1, generator.calls)
	// The retrieved documents reached the prompt.
	assert.Contains(t, generator.prompts[0], "VPN policy text")
	assert.Contains(t, generator.prompts[0], "restart the client")

	// Identical question is served from cache; the model is not consulted again.
	again, err := answerer.Answer(ctx, "my vpn keeps dropping")
	require.NoError(t, err)
	assert.Equal(t, answer, again)
	assert.Equal(t, 1, generator.calls)
}

func TestAnswererApologizesOnGenerationFailure(t *testing.T) {
	retriever := &fakeRetriever{byCollection: map[string][]vector.SearchResult{
		vector.CollectionPolicies: {{ID: "p1", Score: 0.9, Document: "policy"}},
	}}
	generator := &fakeGenerator{err: errors.New("overloaded")}
	responseCache := newFakeResponseCache()
	answerer := NewAnswerer(retriever, generator, responseCache, 5, zaptest.NewLogger(t))

	answer, err := answerer.Answer(context.Background(), "question")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, ApologyMessage, answer)

	// The apology is cached like any other outcome.
	cached, ok := responseCache.Get(context.Background(), "chat_answer:question")
	assert.True(t, ok)
	assert.Equal(t, ApologyMessage, cached)
}

func TestAnswererServesCachedDeflection(t *testing.T) {
	retriever := &fakeRetriever{byCollection: map[string][]vector.SearchResult{}}
	generator := &fakeGenerator{}
	answerer := NewAnswerer(retriever, generator, newFakeResponseCache(), 5, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := answerer.Answer(ctx, "unknown topic")
	require.NoError(t, err)
	queriesAfterFirst := len(retriever.queries)

	answer, err := answerer.Answer(ctx, "unknown topic")
	require.NoError(t, err)
	assert.Equal(t, DeflectionMessage, answer)
	assert.Equal(t, queriesAfterFirst, len(retriever.queries))
}
