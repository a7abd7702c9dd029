package dto

import (
	"time"

	"github.com/spec-kit/workaid/internal/domain"
)

// CreateFAQRequest payload for staff-authored entries.
type CreateFAQRequest struct {
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	Department domain.Department `json:"department"`
}

// UpdateFAQRequest payload; empty fields are left unchanged.
type UpdateFAQRequest struct {
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	Department domain.Department `json:"department"`
}

// FAQResponse response.
type FAQResponse struct {
	ID              string            `json:"id"`
	Question        string            `json:"question"`
	Answer          string            `json:"answer"`
	Department      domain.Department `json:"department"`
	IsSuggested     bool              `json:"is_suggested"`
	SourceTicketIDs []string          `json:"source_ticket_ids,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
