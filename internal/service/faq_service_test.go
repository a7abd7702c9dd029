package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/workaid/internal/domain"
	"github.com/spec-kit/workaid/internal/repository"
	"github.com/spec-kit/workaid/internal/vector"
)

type stubFAQRepo struct {
	repository.FAQRepository
	byID    map[string]*domain.FAQ
	created *domain.FAQ
	updated *domain.FAQ
	deleted []string
	filter  repository.FAQFilter
}

func (s *stubFAQRepo) Delete(_ context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return errors.New("not found")
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubFAQRepo) Create(_ context.Context, faq *domain.FAQ) error {
	faq.ID = "faq-1"
	s.created = faq
	return nil
}

func (s *stubFAQRepo) Update(_ context.Context, faq *domain.FAQ) error {
	s.updated = faq
	return nil
}

func (s *stubFAQRepo) GetByID(_ context.Context, id string) (*domain.FAQ, error) {
	faq, ok := s.byID[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *faq
	return &copied, nil
}

func (s *stubFAQRepo) List(_ context.Context, filter repository.FAQFilter) ([]domain.FAQ, error) {
	s.filter = filter
	return nil, nil
}

type stubVectorIndex struct {
	upserts []string
	texts   []string
	deletes []string
}

func (s *stubVectorIndex) Upsert(_ context.Context, collection, id, text string, _ map[string]string) error {
	s.upserts = append(s.upserts, collection+":"+id)
	s.texts = append(s.texts, text)
	return nil
}

func (s *stubVectorIndex) Delete(_ context.Context, collection, id string) error {
	s.deletes = append(s.deletes, collection+":"+id)
	return nil
}

func newTestFAQService(t *testing.T, faqs *stubFAQRepo, vectors *stubVectorIndex) *FAQService {
	t.Helper()
	return NewFAQService(FAQDependencies{
		FAQRepo: faqs,
		Vectors: vectors,
		Logger:  zaptest.NewLogger(t),
	})
}

func TestCreateByStaffIndexesEntry(t *testing.T) {
	faqs := &stubFAQRepo{}
	vectors := &stubVectorIndex{}
	dept := domain.DepartmentIT
	staff := &domain.StaffMember{ID: "s1", Role: domain.StaffRoleAgent, Department: &dept}
	svc := newTestFAQService(t, faqs, vectors)

	faq, err := svc.CreateByStaff(context.Background(), staff, FAQCreateInput{
		Question:   "How do I reset my password?",
		Answer:     "Use the self-service portal.",
		Department: domain.DepartmentIT,
	})
	require.NoError(t, err)
	assert.False(t, faq.IsSuggested)
	require.NotNil(t, faq.CreatedByID)
	assert.Equal(t, "s1", *faq.CreatedByID)

	require.Len(t, vectors.upserts, 1)
	assert.Equal(t, vector.CollectionFAQs+":faq-1", vectors.upserts[0])
	assert.Contains(t, vectors.texts[0], "How do I reset my password?")
}

func TestCreateByStaffValidatesInput(t *testing.T) {
	dept := domain.DepartmentIT
	staff := &domain.StaffMember{ID: "s1", Role: domain.StaffRoleAgent, Department: &dept}
	svc := newTestFAQService(t, &stubFAQRepo{}, &stubVectorIndex{})

	_, err := svc.CreateByStaff(context.Background(), staff, FAQCreateInput{Answer: "a", Department: domain.DepartmentIT})
	assert.Error(t, err)

	_, err = svc.CreateByStaff(context.Background(), staff, FAQCreateInput{Question: "q", Answer: "a", Department: "finance"})
	assert.Error(t, err)
}

func TestAcceptSuggestionPublishesAndIndexes(t *testing.T) {
	faqs := &stubFAQRepo{byID: map[string]*domain.FAQ{
		"faq-1": {ID: "faq-1", Question: "q", Answer: "a", Department: domain.DepartmentIT, IsSuggested: true},
	}}
	vectors := &stubVectorIndex{}
	dept := domain.DepartmentIT
	staff := &domain.StaffMember{ID: "s1", Role: domain.StaffRoleAgent, Department: &dept}
	svc := newTestFAQService(t, faqs, vectors)

	faq, err := svc.AcceptSuggestion(context.Background(), staff, "faq-1")
	require.NoError(t, err)
	assert.False(t, faq.IsSuggested)
	require.NotNil(t, faq.CreatedByID)
	assert.Equal(t, "s1", *faq.CreatedByID)
	assert.Len(t, vectors.upserts, 1)
}

func TestAcceptSuggestionRejectsPublishedEntry(t *testing.T) {
	faqs := &stubFAQRepo{byID: map[string]*domain.FAQ{
		"faq-1": {ID: "faq-1", Department: domain.DepartmentIT, IsSuggested: false},
	}}
	dept := domain.DepartmentIT
	staff := &domain.StaffMember{ID: "s1", Role: domain.StaffRoleAgent, Department: &dept}
	svc := newTestFAQService(t, faqs, &stubVectorIndex{})

	_, err := svc.AcceptSuggestion(context.Background(), staff, "faq-1")
	assert.Error(t, err)
}

func TestAcceptSuggestionEnforcesDepartmentScope(t *testing.T) {
	faqs := &stubFAQRepo{byID: map[string]*domain.FAQ{
		"faq-1": {ID: "faq-1", Department: domain.DepartmentIT, IsSuggested: true},
	}}
	hr := domain.DepartmentHR
	agent := &domain.StaffMember{ID: "s1", Role: domain.StaffRoleAgent, Department: &hr}
	svc := newTestFAQService(t, faqs, &stubVectorIndex{})

	_, err := svc.AcceptSuggestion(context.Background(), agent, "faq-1")
	assert.Error(t, err)

	admin := &domain.StaffMember{ID: "s2", Role: domain.StaffRoleAdmin}
	_, err = svc.AcceptSuggestion(context.Background(), admin, "faq-1")
	assert.NoError(t, err)
}

func TestDeleteByStaffEvictsPublishedEntryFromIndex(t *testing.T) {
	faqs := &stubFAQRepo{byID: map[string]*domain.FAQ{
		"faq-1": {ID: "faq-1", Department: domain.DepartmentIT, IsSuggested: false},
	}}
	vectors := &stubVectorIndex{}
	dept := domain.DepartmentIT
	agent := &domain.StaffMember{ID: "s1", Role: domain.StaffRoleAgent, Department: &dept}
	svc := newTestFAQService(t, faqs, vectors)

	err := svc.DeleteByStaff(context.Background(), agent, "faq-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"faq-1"}, faqs.deleted)
	assert.Equal(t, []string{vector.CollectionFAQs + ":faq-1"}, vectors.deletes)
}

func TestDeleteByStaffSkipsIndexForSuggestion(t *testing.T) {
	faqs := &stubFAQRepo{byID: map[string]*domain.FAQ{
		"faq-1": {ID: "faq-1", Department: domain.DepartmentHR, IsSuggested: true},
	}}
	vectors := &stubVectorIndex{}
	admin := &domain.StaffMember{ID: "s2", Role: domain.StaffRoleAdmin}
	svc := newTestFAQService(t, faqs, vectors)

	err := svc.DeleteByStaff(context.Background(), admin, "faq-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"faq-1"}, faqs.deleted)
	assert.Empty(t, vectors.deletes)
}

func TestDeleteByStaffEnforcesDepartmentScope(t *testing.T) {
	faqs := &stubFAQRepo{byID: map[string]*domain.FAQ{
		"faq-1": {ID: "faq-1", Department: domain.DepartmentIT},
	}}
	hr := domain.DepartmentHR
	agent := &domain.StaffMember{ID: "s1", Role: domain.StaffRoleAgent, Department: &hr}
	svc := newTestFAQService(t, faqs, &stubVectorIndex{})

	err := svc.DeleteByStaff(context.Background(), agent, "faq-1")
	assert.Error(t, err)
	assert.Empty(t, faqs.deleted)
}

func TestListPublishedExcludesSuggestions(t *testing.T) {
	faqs := &stubFAQRepo{}
	svc := newTestFAQService(t, faqs, &stubVectorIndex{})

	_, err := svc.ListPublished(context.Background(), nil, 50, 0)
	require.NoError(t, err)
	assert.False(t, faqs.filter.IncludeSuggested)
	assert.False(t, faqs.filter.SuggestedOnly)
}

func TestListForStaffScopesAgentsToDepartment(t *testing.T) {
	faqs := &stubFAQRepo{}
	dept := domain.DepartmentHR
	agent := &domain.StaffMember{ID: "s1", Role: domain.StaffRoleAgent, Department: &dept}
	svc := newTestFAQService(t, faqs, &stubVectorIndex{})

	_, err := svc.ListForStaff(context.Background(), agent, true, 50, 0)
	require.NoError(t, err)
	assert.True(t, faqs.filter.SuggestedOnly)
	require.NotNil(t, faqs.filter.Department)
	assert.Equal(t, domain.DepartmentHR, *faqs.filter.Department)
}
