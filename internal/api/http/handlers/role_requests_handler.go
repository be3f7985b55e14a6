package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/stay-service/internal/api/dto"
	"github.com/spec-kit/stay-service/internal/auth"
	"github.com/spec-kit/stay-service/internal/domain"
	"github.com/spec-kit/stay-service/internal/service"
	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

// RoleChangeUseCases is the role-change surface the handler drives.
type RoleChangeUseCases interface {
	Submit(ctx context.Context, actor domain.Actor, input service.RoleChangeSubmitInput) (*domain.RoleChangeRequest, error)
	Accept(ctx context.Context, actor domain.Actor, requestID string) (*service.RoleChangeResult, error)
	Reject(ctx context.Context, actor domain.Actor, requestID string) (*service.RoleChangeResult, error)
}

// RoleRequestsHandler manages role-change endpoints.
type RoleRequestsHandler struct {
	service RoleChangeUseCases
}

// NewRoleRequestsHandler constructs handler.
func NewRoleRequestsHandler(roleChangeService RoleChangeUseCases) *RoleRequestsHandler {
	return &RoleRequestsHandler{service: roleChangeService}
}

// SubmitRoleRequest POST /role-requests.
func (h *RoleRequestsHandler) SubmitRoleRequest(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateRoleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	request, err := h.service.Submit(c.UserContext(), actor, service.RoleChangeSubmitInput{
		RequestedRole: req.RequestedRole,
		Motivation:    req.Motivation,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": roleRequestResponse(request)})
}

// AcceptRoleRequest POST /role-requests/:id/accept.
func (h *RoleRequestsHandler) AcceptRoleRequest(c *fiber.Ctx) error {
	return h.decide(c, h.service.Accept)
}

// RejectRoleRequest POST /role-requests/:id/reject.
func (h *RoleRequestsHandler) RejectRoleRequest(c *fiber.Ctx) error {
	return h.decide(c, h.service.Reject)
}

func (h *RoleRequestsHandler) decide(c *fiber.Ctx, decide func(context.Context, domain.Actor, string) (*service.RoleChangeResult, error)) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	requestID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	result, err := decide(c.UserContext(), actor, requestID)
	if err != nil {
		return err
	}

	body := fiber.Map{"data": roleRequestResponse(result.Request)}
	if result.AlreadyProcessed {
		body["message"] = result.Message
	}
	return c.JSON(body)
}

func roleRequestResponse(r *domain.RoleChangeRequest) dto.RoleRequestResponse {
	return dto.RoleRequestResponse{
		ID:            r.ID,
		RequesterID:   r.RequesterID,
		RequestedRole: r.RequestedRole,
		Motivation:    r.Motivation,
		Status:        r.Status,
		FulfilledBy:   r.FulfilledBy,
		FulfilledAt:   r.FulfilledAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
