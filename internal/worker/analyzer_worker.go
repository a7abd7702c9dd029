package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workaid/internal/ai"
	"github.com/spec-kit/workaid/internal/events"
	"github.com/spec-kit/workaid/internal/repository"
)

// analyzeTimeout bounds one analysis run: an embedding, a similarity
// search, two repository queries, and at most one generation call.
const analyzeTimeout = 2 * time.Minute

// AnalyzerWorker runs the ticket-pattern analyzer after each ticket
// creation, detached from the request path so API latency and outcome
// never depend on it.
type AnalyzerWorker struct {
	analyzer *ai.Analyzer
	tickets  repository.TicketRepository
	logger   *zap.Logger
}

// NewAnalyzerWorker constructs the worker.
func NewAnalyzerWorker(analyzer *ai.Analyzer, tickets repository.TicketRepository, logger *zap.Logger) *AnalyzerWorker {
	return &AnalyzerWorker{analyzer: analyzer, tickets: tickets, logger: logger}
}

// Register subscribes the worker to ticket creation events.
func (w *AnalyzerWorker) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, w.handleTicketCreated)
}

func (w *AnalyzerWorker) handleTicketCreated(_ context.Context, event events.Event) error {
	// Detach from the request context; the analysis outlives the
	// HTTP request that triggered it.
	go w.run(event.TicketID)
	return nil
}

func (w *AnalyzerWorker) run(ticketID string) {
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	ticket, err := w.tickets.GetByID(ctx, ticketID)
	if err != nil {
		w.logger.Warn("analyzer could not load ticket",
			zap.String("ticket_id", ticketID),
			zap.Error(err))
		return
	}
	w.analyzer.Analyze(ctx, ticket)
}
