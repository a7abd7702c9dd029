package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/workaid/internal/config"
	"github.com/spec-kit/workaid/internal/domain"
	"github.com/spec-kit/workaid/internal/events"
	"github.com/spec-kit/workaid/internal/repository"
	"github.com/spec-kit/workaid/internal/vector"
)

type fakeVectorIndex struct {
	upserts   []string
	upsertErr error
	results   []vector.SearchResult
	queries   int
}

func (f *fakeVectorIndex) Upsert(_ context.Context, _, id, _ string, _ map[string]string) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, id)
	return nil
}

func (f *fakeVectorIndex) Query(_ context.Context, _, _ string, _ int) []vector.SearchResult {
	f.queries++
	return f.results
}

type fakeTicketRepo struct {
	repository.TicketRepository
	tickets []domain.Ticket
	filter  repository.TicketFilter
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.filter = filter
	return f.tickets, nil
}

type fakeFAQRepo struct {
	repository.FAQRepository
	created   []*domain.FAQ
	createErr error
	exists    bool
	existsErr error
}

func (f *fakeFAQRepo) Create(_ context.Context, faq *domain.FAQ) error {
	if f.createErr != nil {
		return f.createErr
	}
	faq.ID = "faq-1"
	f.created = append(f.created, faq)
	return nil
}

func (f *fakeFAQRepo) ExistsWithSimilarQuestion(_ context.Context, _ domain.Department, _ string) (bool, error) {
	return f.exists, f.existsErr
}

type fakeDispatcher struct {
	published []events.Event
}

func (f *fakeDispatcher) Publish(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func vpnTicket(id string) domain.Ticket {
	return domain.Ticket{
		ID:          id,
		Department:  domain.DepartmentIT,
		Title:       "VPN keeps disconnecting",
		Description: "Connection drops every few minutes",
		Status:      domain.TicketStatusOpen,
	}
}

func analyzerConfig() config.AIConfig {
	return config.AIConfig{
		SimilarityThreshold:    0.8,
		MinClusterSize:         2,
		AnalyzerCandidateLimit: 100,
	}
}

func newTestAnalyzer(t *testing.T, vectors *fakeVectorIndex, tickets *fakeTicketRepo, faqs *fakeFAQRepo, generator *fakeGenerator, dispatcher events.Dispatcher) *Analyzer {
	t.Helper()
	return NewAnalyzer(AnalyzerDependencies{
		Vectors:    vectors,
		TicketRepo: tickets,
		FAQRepo:    faqs,
		Generator:  generator,
		Dispatcher: dispatcher,
	}, analyzerConfig(), zaptest.NewLogger(t))
}

func TestAnalyzerSuggestsFAQFromCluster(t *testing.T) {
	newTicket := vpnTicket("t3")
	vectors := &fakeVectorIndex{results: []vector.SearchResult{
		{ID: "t3", Score: 1.0},
		{ID: "t1", Score: 0.92},
		{ID: "t2", Score: 0.85},
		{ID: "t9", Score: 0.51},
	}}
	tickets := &fakeTicketRepo{tickets: []domain.Ticket{vpnTicket("t1"), vpnTicket("t2")}}
	faqs := &fakeFAQRepo{}
	generator := &fakeGenerator{replies: []string{"Restart the VPN client; if the drops persist, reinstall it from the portal."}}
	dispatcher := &fakeDispatcher{}

	analyzer := newTestAnalyzer(t, vectors, tickets, faqs, generator, dispatcher)
	analyzer.Analyze(context.Background(), &newTicket)

	// The new ticket was indexed before searching.
	assert.Equal(t, []string{"t3"}, vectors.upserts)

	// Candidates below threshold and the ticket itself were filtered out
	// before hitting the database.
	assert.ElementsMatch(t, []string{"t1", "t2"}, tickets.filter.IDs)
	require.NotNil(t, tickets.filter.Department)
	assert.Equal(t, domain.DepartmentIT, *tickets.filter.Department)
	assert.Equal(t, domain.ActiveTicketStatuses(), tickets.filter.Statuses)

	// Exactly one suggested FAQ referencing the whole cluster.
	require.Len(t, faqs.created, 1)
	faq := faqs.created[0]
	assert.True(t, faq.IsSuggested)
	assert.Equal(t, domain.DepartmentIT, faq.Department)
	assert.Equal(t, newTicket.Title, faq.Question)
	assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, faq.SourceTicketIDs)
	assert.NotEmpty(t, faq.Answer)

	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, events.EventFAQSuggested, dispatcher.published[0].Type)
}

func TestAnalyzerSkipsSmallCluster(t *testing.T) {
	newTicket := vpnTicket("t3")
	vectors := &fakeVectorIndex{results: []vector.SearchResult{
		{ID: "t3", Score: 1.0},
		{ID: "t1", Score: 0.92},
		{ID: "t9", Score: 0.4},
	}}
	tickets := &fakeTicketRepo{tickets: []domain.Ticket{vpnTicket("t1")}}
	faqs := &fakeFAQRepo{}
	generator := &fakeGenerator{replies: []string{"unused"}}

	analyzer := newTestAnalyzer(t, vectors, tickets, faqs, generator, nil)
	analyzer.Analyze(context.Background(), &newTicket)

	assert.Empty(t, faqs.created)
	assert.Zero(t, generator.calls)
}

func TestAnalyzerSkipsWhenNoSimilarCandidates(t *testing.T) {
	newTicket := vpnTicket("t3")
	vectors := &fakeVectorIndex{results: []vector.SearchResult{
		{ID: "t3", Score: 1.0},
		{ID: "t9", Score: 0.2},
	}}
	tickets := &fakeTicketRepo{}
	faqs := &fakeFAQRepo{}
	generator := &fakeGenerator{replies: []string{"unused"}}

	analyzer := newTestAnalyzer(t, vectors, tickets, faqs, generator, nil)
	analyzer.Analyze(context.Background(), &newTicket)

	assert.Empty(t, faqs.created)
	assert.Empty(t, tickets.filter.IDs)
}

func TestAnalyzerSkipsWhenSimilarFAQExists(t *testing.T) {
	newTicket := vpnTicket("t3")
	vectors := &fakeVectorIndex{results: []vector.SearchResult{
		{ID: "t1", Score: 0.92},
		{ID: "t2", Score: 0.85},
	}}
	tickets := &fakeTicketRepo{tickets: []domain.Ticket{vpnTicket("t1"), vpnTicket("t2")}}
	faqs := &fakeFAQRepo{exists: true}
	generator := &fakeGenerator{replies: []string{"unused"}}

	analyzer := newTestAnalyzer(t, vectors, tickets, faqs, generator, nil)
	analyzer.Analyze(context.Background(), &newTicket)

	assert.Empty(t, faqs.created)
	assert.Zero(t, generator.calls)
}

func TestAnalyzerSwallowsIndexingFailure(t *testing.T) {
	newTicket := vpnTicket("t3")
	vectors := &fakeVectorIndex{upsertErr: errors.New("qdrant unavailable")}
	faqs := &fakeFAQRepo{}

	analyzer := newTestAnalyzer(t, vectors, &fakeTicketRepo{}, faqs, &fakeGenerator{}, nil)
	analyzer.Analyze(context.Background(), &newTicket)

	assert.Zero(t, vectors.queries)
	assert.Empty(t, faqs.created)
}

func TestAnalyzerSwallowsGenerationFailure(t *testing.T) {
	newTicket := vpnTicket("t3")
	vectors := &fakeVectorIndex{results: []vector.SearchResult{
		{ID: "t1", Score: 0.92},
		{ID: "t2", Score: 0.85},
	}}
	tickets := &fakeTicketRepo{tickets: []domain.Ticket{vpnTicket("t1"), vpnTicket("t2")}}
	faqs := &fakeFAQRepo{}
	generator := &fakeGenerator{err: errors.New("overloaded")}

	analyzer := newTestAnalyzer(t, vectors, tickets, faqs, generator, nil)
	analyzer.Analyze(context.Background(), &newTicket)

	assert.Empty(t, faqs.created)
}

func TestAnalyzerTreatsConcurrentDuplicateAsNoop(t *testing.T) {
	newTicket := vpnTicket("t3")
	vectors := &fakeVectorIndex{results: []vector.SearchResult{
		{ID: "t1", Score: 0.92},
		{ID: "t2", Score: 0.85},
	}}
	tickets := &fakeTicketRepo{tickets: []domain.Ticket{vpnTicket("t1"), vpnTicket("t2")}}
	faqs := &fakeFAQRepo{createErr: &pgconn.PgError{Code: "23505"}}
	generator := &fakeGenerator{replies: []string{"answer"}}
	dispatcher := &fakeDispatcher{}

	analyzer := newTestAnalyzer(t, vectors, tickets, faqs, generator, dispatcher)
	analyzer.Analyze(context.Background(), &newTicket)

	// Losing the insert race is not an error and emits no event.
	assert.Empty(t, dispatcher.published)
}
