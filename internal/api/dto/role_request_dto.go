package dto

import (
	"time"

	"github.com/spec-kit/stay-service/internal/domain"
)

// CreateRoleRequest payload. RequestedRole defaults to HOST.
type CreateRoleRequest struct {
	RequestedRole domain.Role `json:"requested_role"`
	Motivation    string      `json:"motivation"`
}

// RoleRequestResponse describes a role-change request.
type RoleRequestResponse struct {
	ID            string                  `json:"id"`
	RequesterID   string                  `json:"requester_id"`
	RequestedRole domain.Role             `json:"requested_role"`
	Motivation    string                  `json:"motivation"`
	Status        domain.RoleChangeStatus `json:"status"`
	FulfilledBy   *string                 `json:"fulfilled_by"`
	FulfilledAt   *time.Time              `json:"fulfilled_at"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}
