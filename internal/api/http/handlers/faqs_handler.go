package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workaid/internal/api/dto"
	"github.com/spec-kit/workaid/internal/domain"
	"github.com/spec-kit/workaid/internal/service"
)

// FAQsHandler exposes knowledge base endpoints.
type FAQsHandler struct {
	faqs *service.FAQService
}

// NewFAQsHandler constructs handler.
func NewFAQsHandler(faqService *service.FAQService) *FAQsHandler {
	return &FAQsHandler{faqs: faqService}
}

// ListFAQs GET /faqs. Public catalog of accepted entries.
func (h *FAQsHandler) ListFAQs(c *fiber.Ctx) error {
	var dept *domain.Department
	if deptStr := c.Query("department"); deptStr != "" {
		parsed, err := domain.ParseDepartment(deptStr)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "unknown department")
		}
		dept = &parsed
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)

	faqs, err := h.faqs.ListPublished(c.Context(), dept, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": faqResponses(faqs)})
}

// ListStaffFAQs GET /staff/faqs. Includes pending suggestions.
func (h *FAQsHandler) ListStaffFAQs(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	suggestedOnly := c.QueryBool("suggested_only", false)
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)

	faqs, err := h.faqs.ListForStaff(c.Context(), staff, suggestedOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": faqResponses(faqs)})
}

// CreateFAQ POST /staff/faqs.
func (h *FAQsHandler) CreateFAQ(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateFAQRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	faq, err := h.faqs.CreateByStaff(c.Context(), staff, service.FAQCreateInput{
		Question:   req.Question,
		Answer:     req.Answer,
		Department: req.Department,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": faqResponse(faq)})
}

// AcceptFAQ POST /staff/faqs/:id/accept.
func (h *FAQsHandler) AcceptFAQ(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	faq, err := h.faqs.AcceptSuggestion(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": faqResponse(faq)})
}

// UpdateFAQ PATCH /staff/faqs/:id.
func (h *FAQsHandler) UpdateFAQ(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateFAQRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	faq, err := h.faqs.UpdateByStaff(c.Context(), staff, c.Params("id"), service.FAQCreateInput{
		Question:   req.Question,
		Answer:     req.Answer,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": faqResponse(faq)})
}

// DeleteFAQ DELETE /staff/faqs/:id.
func (h *FAQsHandler) DeleteFAQ(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.faqs.DeleteByStaff(c.Context(), staff, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func faqResponse(faq *domain.FAQ) dto.FAQResponse {
	return dto.FAQResponse{
		ID:              faq.ID,
		Question:        faq.Question,
		Answer:          faq.Answer,
		Department:      faq.Department,
		IsSuggested:     faq.IsSuggested,
		SourceTicketIDs: faq.SourceTicketIDs,
		CreatedAt:       faq.CreatedAt,
		UpdatedAt:       faq.UpdatedAt,
	}
}

func faqResponses(faqs []domain.FAQ) []dto.FAQResponse {
	items := make([]dto.FAQResponse, 0, len(faqs))
	for i := range faqs {
		items = append(items, faqResponse(&faqs[i]))
	}
	return items
}
