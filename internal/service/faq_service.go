package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/workaid/internal/domain"
	"github.com/spec-kit/workaid/internal/repository"
	"github.com/spec-kit/workaid/internal/vector"
)

// FAQIndex is the slice of the vector gateway the FAQ service needs to
// keep the retrieval index in step with the knowledge base.
type FAQIndex interface {
	Upsert(ctx context.Context, collection, id, text string, extra map[string]string) error
	Delete(ctx context.Context, collection, id string) error
}

// FAQService manages the knowledge base and keeps the vector index in
// step with accepted entries.
type FAQService struct {
	faqs    repository.FAQRepository
	vectors FAQIndex
	logger  *zap.Logger
}

// FAQDependencies bundles collaborators for FAQ service.
type FAQDependencies struct {
	FAQRepo repository.FAQRepository
	Vectors FAQIndex
	Logger  *zap.Logger
}

// FAQCreateInput describes a staff-authored FAQ.
type FAQCreateInput struct {
	Question   string
	Answer     string
	Department domain.Department
}

// NewFAQService constructs the service.
func NewFAQService(deps FAQDependencies) *FAQService {
	return &FAQService{
		faqs:    deps.FAQRepo,
		vectors: deps.Vectors,
		logger:  deps.Logger,
	}
}

// ListPublished returns accepted FAQs visible to end users.
func (s *FAQService) ListPublished(ctx context.Context, dept *domain.Department, limit, offset int) ([]domain.FAQ, error) {
	return s.faqs.List(ctx, repository.FAQFilter{
		Department: dept,
		Limit:      limit,
		Offset:     offset,
	})
}

// ListForStaff returns FAQs for staff review, optionally only the
// pending AI suggestions.
func (s *FAQService) ListForStaff(ctx context.Context, staff *domain.StaffMember, suggestedOnly bool, limit, offset int) ([]domain.FAQ, error) {
	if staff == nil {
		return nil, errors.New("staff required")
	}
	filter := repository.FAQFilter{
		IncludeSuggested: true,
		SuggestedOnly:    suggestedOnly,
		Limit:            limit,
		Offset:           offset,
	}
	if staff.Role != domain.StaffRoleAdmin && staff.Department != nil {
		filter.Department = staff.Department
	}
	return s.faqs.List(ctx, filter)
}

// CreateByStaff persists a staff-authored FAQ and indexes it for
// retrieval immediately.
func (s *FAQService) CreateByStaff(ctx context.Context, staff *domain.StaffMember, input FAQCreateInput) (*domain.FAQ, error) {
	if staff == nil {
		return nil, errors.New("staff required")
	}
	question := strings.TrimSpace(input.Question)
	answer := strings.TrimSpace(input.Answer)
	if question == "" || answer == "" {
		return nil, errors.New("question and answer are required")
	}
	if !input.Department.Valid() {
		return nil, errors.New("unknown department")
	}

	faq := &domain.FAQ{
		Question:    question,
		Answer:      answer,
		Department:  input.Department,
		CreatedByID: &staff.ID,
	}
	if err := s.faqs.Create(ctx, faq); err != nil {
		return nil, err
	}
	s.index(ctx, faq)
	return faq, nil
}

// AcceptSuggestion publishes an AI-suggested FAQ. The accepting agent
// becomes the author, and the entry enters the retrieval index.
func (s *FAQService) AcceptSuggestion(ctx context.Context, staff *domain.StaffMember, faqID string) (*domain.FAQ, error) {
	if staff == nil {
		return nil, errors.New("staff required")
	}
	faq, err := s.faqs.GetByID(ctx, faqID)
	if err != nil {
		return nil, err
	}
	if !faq.IsSuggested {
		return nil, errors.New("FAQ is not a pending suggestion")
	}
	if staff.Role != domain.StaffRoleAdmin && (staff.Department == nil || *staff.Department != faq.Department) {
		return nil, errors.New("access denied")
	}

	faq.IsSuggested = false
	faq.CreatedByID = &staff.ID
	if err := s.faqs.Update(ctx, faq); err != nil {
		return nil, err
	}
	s.index(ctx, faq)
	return faq, nil
}

// UpdateByStaff edits an accepted FAQ and refreshes its index entry.
func (s *FAQService) UpdateByStaff(ctx context.Context, staff *domain.StaffMember, faqID string, input FAQCreateInput) (*domain.FAQ, error) {
	if staff == nil {
		return nil, errors.New("staff required")
	}
	faq, err := s.faqs.GetByID(ctx, faqID)
	if err != nil {
		return nil, err
	}
	if staff.Role != domain.StaffRoleAdmin && (staff.Department == nil || *staff.Department != faq.Department) {
		return nil, errors.New("access denied")
	}
	if question := strings.TrimSpace(input.Question); question != "" {
		faq.Question = question
	}
	if answer := strings.TrimSpace(input.Answer); answer != "" {
		faq.Answer = answer
	}
	if input.Department != "" {
		if !input.Department.Valid() {
			return nil, errors.New("unknown department")
		}
		faq.Department = input.Department
	}
	if err := s.faqs.Update(ctx, faq); err != nil {
		return nil, err
	}
	if !faq.IsSuggested {
		s.index(ctx, faq)
	}
	return faq, nil
}

// DeleteByStaff removes an FAQ. Published entries are also evicted from
// the retrieval index so the chatbot stops citing them.
func (s *FAQService) DeleteByStaff(ctx context.Context, staff *domain.StaffMember, faqID string) error {
	if staff == nil {
		return errors.New("staff required")
	}
	faq, err := s.faqs.GetByID(ctx, faqID)
	if err != nil {
		return err
	}
	if staff.Role != domain.StaffRoleAdmin && (staff.Department == nil || *staff.Department != faq.Department) {
		return errors.New("access denied")
	}
	if err := s.faqs.Delete(ctx, faqID); err != nil {
		return err
	}
	if !faq.IsSuggested {
		if err := s.vectors.Delete(ctx, vector.CollectionFAQs, faqID); err != nil {
			s.logger.Warn("failed to remove FAQ from index", zap.String("faq_id", faqID), zap.Error(err))
		}
	}
	return nil
}

func (s *FAQService) index(ctx context.Context, faq *domain.FAQ) {
	extra := map[string]string{"department": string(faq.Department)}
	if err := s.vectors.Upsert(ctx, vector.CollectionFAQs, faq.ID, faq.SearchText(), extra); err != nil {
		s.logger.Warn("failed to index FAQ", zap.String("faq_id", faq.ID), zap.Error(err))
	}
}
