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

// TicketUseCases is the support-ticket surface the handler drives.
type TicketUseCases interface {
	Create(ctx context.Context, actor domain.Actor, input service.TicketCreateInput) (*domain.Ticket, error)
	Transition(ctx context.Context, actor domain.Actor, ticketID string, action domain.TicketAction) (*domain.Ticket, error)
}

// TicketsHandler manages support ticket endpoints.
type TicketsHandler struct {
	service TicketUseCases
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService TicketUseCases) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.UserContext(), actor, service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// TransitionTicket POST /tickets/:id/transitions/:action.
func (h *TicketsHandler) TransitionTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	action, err := domain.ParseTicketAction(c.Params("action"))
	if err != nil {
		return apperrors.NewValidationError("unknown ticket action", map[string]any{"action": c.Params("action")})
	}

	ticket, err := h.service.Transition(c.UserContext(), actor, ticketID, action)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:                  t.ID,
		OwnerID:             t.OwnerID,
		Subject:             t.Subject,
		Description:         t.Description,
		Status:              t.Status,
		AssignedModeratorID: t.AssignedModeratorID,
		AssignedAt:          t.AssignedAt,
		SolvedAt:            t.SolvedAt,
		ClosedAt:            t.ClosedAt,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}
