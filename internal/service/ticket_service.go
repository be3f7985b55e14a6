package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/stay-service/internal/domain"
	"github.com/spec-kit/stay-service/internal/events"
	"github.com/spec-kit/stay-service/internal/repository"
	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

// TicketService coordinates support ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create opens a ticket owned by the actor.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", nil)
	}

	ticket := &domain.Ticket{
		OwnerID:     actor.AccountID,
		Subject:     subject,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return ticket, nil
}

// Transition applies action to the ticket. Repeating the current state is a no-op.
func (s *TicketService) Transition(ctx context.Context, actor domain.Actor, ticketID string, action domain.TicketAction) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}

	if action.RequiresElevation() && !actor.IsElevated() {
		return nil, apperrors.NewForbidden("only moderators can take or solve tickets")
	}
	if !actor.CanActOn(ticket.OwnerID) {
		return nil, apperrors.NewForbidden("ticket belongs to another account")
	}

	previous := ticket.Status
	changed, err := ticket.Apply(action, actor.AccountID, s.now().UTC())
	if errors.Is(err, domain.ErrIllegalTransition) {
		return nil, apperrors.NewIllegalTransition("transition not allowed from current status", map[string]any{
			"status": previous,
			"action": action,
		})
	}
	if err != nil {
		return nil, err
	}
	if !changed {
		return ticket, nil
	}

	if err := s.tickets.UpdateStatus(ctx, ticket, previous); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperrors.NewConflict("ticket status changed concurrently", map[string]any{"ticket_id": ticketID})
		}
		return nil, fmt.Errorf("update ticket status: %w", err)
	}

	s.logger.Info("ticket status changed",
		zap.String("ticket_id", ticket.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(ticket.Status)))

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventTicketStatusChanged,
		AggregateID: ticket.ID,
		Actor:       events.ActorOf(actor),
		Payload: events.TicketStatusChangedPayload{
			OwnerID:   ticket.OwnerID,
			OldStatus: previous,
			NewStatus: ticket.Status,
			Action:    action,
		},
	})
	return ticket, nil
}
