package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/workaid/internal/cache"
	"github.com/spec-kit/workaid/internal/genai"
	"github.com/spec-kit/workaid/internal/vector"
)

// ErrGenerationFailed marks an answer produced through the failure
// path. The returned text is still safe to show the user; the error
// tells callers synthesis did not succeed.
var ErrGenerationFailed = errors.New("failed to generate response")

// Fixed user-facing texts. The end user always sees one of a grounded
// answer, the deflection, or the apology, never a raw upstream error.
const (
	DeflectionMessage = "I couldn't find anything about that in our policies or FAQs. " +
		"Please file a support ticket and an agent will help you out."
	ApologyMessage = "Sorry, I'm having trouble answering right now. " +
		"Please try again in a moment or file a support ticket."
)

// Retriever is the slice of the vector gateway the answerer consumes.
type Retriever interface {
	Query(ctx context.Context, collection, text string, topK int) []vector.SearchResult
}

// ResponseCache caches answers by exact question text.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// Answerer answers free-text questions from the policies and FAQs
// collections, grounded retrieval-then-generation.
type Answerer struct {
	retriever Retriever
	generator genai.Generator
	cache     ResponseCache
	topK      int
	logger    *zap.Logger
}

// NewAnswerer builds the answerer; topK caps matches per collection.
func NewAnswerer(retriever Retriever, generator genai.Generator, responseCache ResponseCache, topK int, logger *zap.Logger) *Answerer {
	if topK <= 0 {
		topK = 5
	}
	return &Answerer{
		retriever: retriever,
		generator: generator,
		cache:     responseCache,
		topK:      topK,
		logger:    logger,
	}
}

// Answer resolves a question. The returned string is always a complete
// user-facing text. A non-nil error is ErrGenerationFailed and means
// the text is the apology fallback rather than a grounded answer; both
// outcomes are cached under the exact question text.
func (a *Answerer) Answer(ctx context.Context, question string) (string, error) {
	key := cache.Key("chat_answer", question)
	if cached, ok := a.cache.Get(ctx, key); ok {
		return cached, nil
	}

	policies := a.retriever.Query(ctx, vector.CollectionPolicies, question, a.topK)
	faqs := a.retriever.Query(ctx, vector.CollectionFAQs, question, a.topK)

	contextBlock := joinDocuments(policies, faqs)
	if contextBlock == "" {
		a.cache.Set(ctx, key, DeflectionMessage)
		return DeflectionMessage, nil
	}

	answer, err := a.generator.Generate(ctx, buildAnswerPrompt(question, contextBlock))
	if err != nil {
		a.logger.Error("answer synthesis failed", zap.Error(err))
		a.cache.Set(ctx, key, ApologyMessage)
		return ApologyMessage, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	answer = strings.TrimSpace(answer)
	a.cache.Set(ctx, key, answer)
	return answer, nil
}
