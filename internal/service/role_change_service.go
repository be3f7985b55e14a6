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

// AlreadyProcessedMessage is returned when deciding on a request that is no longer pending.
const AlreadyProcessedMessage = "request already processed"

// RoleChangeService handles requests for role promotion.
type RoleChangeService struct {
	tx         TxRunner
	requests   repository.RoleChangeRepository
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// RoleChangeDependencies bundles collaborators for the role change service.
type RoleChangeDependencies struct {
	TxManager      TxRunner
	RoleChangeRepo repository.RoleChangeRepository
	AccountRepo    repository.AccountRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Clock          func() time.Time
}

// RoleChangeSubmitInput describes a new request. RequestedRole defaults to HOST.
type RoleChangeSubmitInput struct {
	RequestedRole domain.Role
	Motivation    string
}

// RoleChangeResult is the outcome of an accept or reject call.
type RoleChangeResult struct {
	Request          *domain.RoleChangeRequest
	AlreadyProcessed bool
	Message          string
}

// NewRoleChangeService constructs the service.
func NewRoleChangeService(deps RoleChangeDependencies) *RoleChangeService {
	s := &RoleChangeService{
		tx:         deps.TxManager,
		requests:   deps.RoleChangeRepo,
		accounts:   deps.AccountRepo,
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

// Submit files a pending request on behalf of the actor.
func (s *RoleChangeService) Submit(ctx context.Context, actor domain.Actor, input RoleChangeSubmitInput) (*domain.RoleChangeRequest, error) {
	role := input.RequestedRole
	if role == "" {
		role = domain.RoleHost
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"requested_role": role})
	}
	if role == actor.Role {
		return nil, apperrors.NewValidationError("account already has the requested role", map[string]any{"requested_role": role})
	}

	request := &domain.RoleChangeRequest{
		RequesterID:   actor.AccountID,
		RequestedRole: role,
		Motivation:    strings.TrimSpace(input.Motivation),
		Status:        domain.RoleChangePending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("create role change request: %w", err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventRoleChangeRequested,
		AggregateID: request.ID,
		Actor:       events.ActorOf(actor),
		Payload:     roleChangePayload(request),
	})
	return request, nil
}

// Accept promotes the requester to the requested role.
func (s *RoleChangeService) Accept(ctx context.Context, actor domain.Actor, requestID string) (*RoleChangeResult, error) {
	return s.decide(ctx, actor, requestID, domain.RoleChangeAccept)
}

// Reject closes the request without changing the requester's role.
func (s *RoleChangeService) Reject(ctx context.Context, actor domain.Actor, requestID string) (*RoleChangeResult, error) {
	return s.decide(ctx, actor, requestID, domain.RoleChangeReject)
}

func (s *RoleChangeService) decide(ctx context.Context, actor domain.Actor, requestID string, decision domain.RoleChangeDecision) (*RoleChangeResult, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only admins can decide role change requests")
	}

	var result *RoleChangeResult
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		result = nil

		request, err := s.requests.GetByID(ctx, requestID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("role change request", map[string]any{"request_id": requestID})
		}
		if err != nil {
			return fmt.Errorf("get role change request: %w", err)
		}

		expected := request.Status
		if err := request.Decide(decision, actor.AccountID, s.now().UTC()); err != nil {
			if errors.Is(err, domain.ErrRequestAlreadyProcessed) {
				result = &RoleChangeResult{Request: request, AlreadyProcessed: true, Message: AlreadyProcessedMessage}
				return nil
			}
			return apperrors.NewValidationError(err.Error(), map[string]any{"decision": decision})
		}

		if err := s.requests.UpdateDecision(ctx, request, expected); err != nil {
			if errors.Is(err, repository.ErrStatusChanged) {
				return apperrors.NewConflict("role change request decided concurrently", map[string]any{"request_id": requestID})
			}
			return fmt.Errorf("update role change request: %w", err)
		}

		if decision == domain.RoleChangeAccept {
			if err := s.accounts.UpdateRole(ctx, request.RequesterID, request.RequestedRole); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("account", map[string]any{"account_id": request.RequesterID})
				}
				return fmt.Errorf("update account role: %w", err)
			}
		}

		result = &RoleChangeResult{Request: request}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.AlreadyProcessed {
		s.logger.Info("role change request already processed",
			zap.String("request_id", requestID),
			zap.String("status", string(result.Request.Status)))
		return result, nil
	}

	eventType := events.EventRoleChangeRejected
	if decision == domain.RoleChangeAccept {
		eventType = events.EventRoleChangeAccepted
	}
	s.logger.Info("role change request decided",
		zap.String("request_id", requestID),
		zap.String("status", string(result.Request.Status)),
		zap.String("admin_id", actor.AccountID))

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        eventType,
		AggregateID: result.Request.ID,
		Actor:       events.ActorOf(actor),
		Payload:     roleChangePayload(result.Request),
	})
	return result, nil
}

func roleChangePayload(request *domain.RoleChangeRequest) events.RoleChangePayload {
	return events.RoleChangePayload{
		RequestID:     request.ID,
		RequesterID:   request.RequesterID,
		RequestedRole: request.RequestedRole,
		Status:        request.Status,
	}
}
