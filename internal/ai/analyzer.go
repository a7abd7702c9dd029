package ai

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/spec-kit/workaid/internal/config"
	"github.com/spec-kit/workaid/internal/domain"
	"github.com/spec-kit/workaid/internal/events"
	"github.com/spec-kit/workaid/internal/genai"
	"github.com/spec-kit/workaid/internal/repository"
	"github.com/spec-kit/workaid/internal/vector"
)

// VectorIndex is the slice of the vector gateway the analyzer consumes.
type VectorIndex interface {
	Upsert(ctx context.Context, collection, id, text string, extra map[string]string) error
	Query(ctx context.Context, collection, text string, topK int) []vector.SearchResult
}

// Analyzer watches newly created tickets for clusters of similar open
// requests and synthesizes suggested FAQs from them. It runs as a
// side effect of ticket creation and never propagates a failure.
type Analyzer struct {
	vectors    VectorIndex
	tickets    repository.TicketRepository
	faqs       repository.FAQRepository
	generator  genai.Generator
	dispatcher events.Dispatcher
	cfg        config.AIConfig
	logger     *zap.Logger
}

// AnalyzerDependencies bundles collaborators for the analyzer.
type AnalyzerDependencies struct {
	Vectors    VectorIndex
	TicketRepo repository.TicketRepository
	FAQRepo    repository.FAQRepository
	Generator  genai.Generator
	Dispatcher events.Dispatcher
}

// NewAnalyzer constructs the analyzer with its tunable thresholds.
func NewAnalyzer(deps AnalyzerDependencies, cfg config.AIConfig, logger *zap.Logger) *Analyzer {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 0.8
	}
	if cfg.MinClusterSize <= 0 {
		cfg.MinClusterSize = 2
	}
	if cfg.AnalyzerCandidateLimit <= 0 {
		cfg.AnalyzerCandidateLimit = 100
	}
	return &Analyzer{
		vectors:    deps.Vectors,
		tickets:    deps.TicketRepo,
		faqs:       deps.FAQRepo,
		generator:  deps.Generator,
		dispatcher: deps.Dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Analyze indexes the new ticket and, when enough similar open tickets
// exist in the same department, persists a suggested FAQ. Every error
// is logged and swallowed; ticket creation must never observe one.
func (a *Analyzer) Analyze(ctx context.Context, ticket *domain.Ticket) {
	log := a.logger.With(zap.String("ticket_id", ticket.ID))

	extra := map[string]string{
		"department": string(ticket.Department),
		"created_at": ticket.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := a.vectors.Upsert(ctx, vector.CollectionTickets, ticket.ID, ticket.SearchText(), extra); err != nil {
		log.Warn("failed to index ticket into vector store", zap.Error(err))
		return
	}

	candidates := a.vectors.Query(ctx, vector.CollectionTickets, ticket.SearchText(), a.cfg.AnalyzerCandidateLimit)

	var similarIDs []string
	for _, candidate := range candidates {
		if candidate.Score < a.cfg.SimilarityThreshold || candidate.ID == ticket.ID {
			continue
		}
		similarIDs = append(similarIDs, candidate.ID)
	}
	if len(similarIDs) == 0 {
		return
	}

	dept := ticket.Department
	cluster, err := a.tickets.ListWithFilter(ctx, repository.TicketFilter{
		IDs:        similarIDs,
		Department: &dept,
		Statuses:   domain.ActiveTicketStatuses(),
		Limit:      a.cfg.AnalyzerCandidateLimit,
	})
	if err != nil {
		log.Warn("failed to load similar tickets", zap.Error(err))
		return
	}

	filtered := cluster[:0]
	for _, member := range cluster {
		if member.ID != ticket.ID {
			filtered = append(filtered, member)
		}
	}
	if len(filtered) < a.cfg.MinClusterSize {
		return
	}

	exists, err := a.faqs.ExistsWithSimilarQuestion(ctx, ticket.Department, ticket.Title)
	if err != nil {
		log.Warn("duplicate-suggestion check failed", zap.Error(err))
		return
	}
	if exists {
		log.Debug("similar FAQ already exists, skipping suggestion")
		return
	}

	answer, err := a.generator.Generate(ctx, buildFAQPrompt(ticket.Title, filtered))
	if err != nil {
		log.Warn("FAQ synthesis failed", zap.Error(err))
		return
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		log.Warn("FAQ synthesis returned empty answer")
		return
	}

	sourceIDs := make([]string, 0, len(filtered)+1)
	for _, member := range filtered {
		sourceIDs = append(sourceIDs, member.ID)
	}
	sourceIDs = append(sourceIDs, ticket.ID)

	faq := &domain.FAQ{
		Question:        ticket.Title,
		Answer:          answer,
		Department:      ticket.Department,
		IsSuggested:     true,
		SourceTicketIDs: sourceIDs,
	}
	if err := a.faqs.Create(ctx, faq); err != nil {
		// The partial unique index closes the read-then-write race:
		// a concurrent suggestion for the same cluster loses here.
		if repository.IsUniqueViolation(err) {
			log.Debug("suggestion already created concurrently")
			return
		}
		log.Warn("failed to persist suggested FAQ", zap.Error(err))
		return
	}

	log.Info("suggested FAQ created",
		zap.String("faq_id", faq.ID),
		zap.String("department", string(faq.Department)),
		zap.Int("cluster_size", len(filtered)))

	if a.dispatcher != nil {
		_ = a.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventFAQSuggested,
			TicketID:  ticket.ID,
			Timestamp: time.Now(),
			Payload: events.FAQSuggestedPayload{
				FAQID:           faq.ID,
				Department:      faq.Department,
				Question:        faq.Question,
				SourceTicketIDs: faq.SourceTicketIDs,
			},
		})
	}
}
