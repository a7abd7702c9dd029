package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/workaid/internal/ai"
)

// ChatService fronts the question answerer for the assistant endpoint.
type ChatService struct {
	answerer *ai.Answerer
	logger   *zap.Logger
}

// NewChatService constructs the service.
func NewChatService(answerer *ai.Answerer, logger *zap.Logger) *ChatService {
	return &ChatService{answerer: answerer, logger: logger}
}

// Ask answers a free-text question. The returned text is always
// presentable to the user; degraded synthesis is logged but not
// surfaced as an API failure.
func (s *ChatService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question is required")
	}

	answer, err := s.answerer.Answer(ctx, question)
	if err != nil {
		if errors.Is(err, ai.ErrGenerationFailed) {
			s.logger.Warn("chat answer degraded", zap.Error(err))
			return answer, nil
		}
		return "", err
	}
	return answer, nil
}
