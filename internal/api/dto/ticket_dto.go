package dto

import (
	"time"

	"github.com/spec-kit/stay-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// TicketResponse describes a support ticket.
type TicketResponse struct {
	ID                  string              `json:"id"`
	OwnerID             string              `json:"owner_id"`
	Subject             string              `json:"subject"`
	Description         string              `json:"description"`
	Status              domain.TicketStatus `json:"status"`
	AssignedModeratorID *string             `json:"assigned_moderator_id"`
	AssignedAt          *time.Time          `json:"assigned_at"`
	SolvedAt            *time.Time          `json:"solved_at"`
	ClosedAt            *time.Time          `json:"closed_at"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}
