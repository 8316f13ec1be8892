package dto

import (
	"time"

	"github.com/creativa-studio/lead-service/internal/domain"
)

// SubmitLeadRequest payload for the public contact form.
type SubmitLeadRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Message           string `json:"message"`
	AcceptTerms       bool   `json:"acceptTerms"`
	VerificationToken string `json:"verificationToken"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.LeadStatus `json:"status"`
}

// BulkDeleteRequest payload.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// LeadResponse response.
type LeadResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone,omitempty"`
	Message   string            `json:"message"`
	Status    domain.LeadStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// BulkDeleteResponse response.
type BulkDeleteResponse struct {
	DeletedCount int64  `json:"deletedCount"`
	Warning      string `json:"warning,omitempty"`
}
