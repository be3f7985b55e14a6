package domain

import (
	"errors"
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusSolved     TicketStatus = "SOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketAction is a requested lifecycle move, named after its target state.
type TicketAction string

const (
	TicketActionOpen       TicketAction = "open"
	TicketActionInProgress TicketAction = "in_progress"
	TicketActionSolved     TicketAction = "solved"
	TicketActionClosed     TicketAction = "closed"
)

// ErrIllegalTransition is returned when an action is not allowed from the current status.
var ErrIllegalTransition = errors.New("illegal ticket transition")

// ParseTicketAction validates a raw action name.
func ParseTicketAction(raw string) (TicketAction, error) {
	switch action := TicketAction(raw); action {
	case TicketActionOpen, TicketActionInProgress, TicketActionSolved, TicketActionClosed:
		return action, nil
	}
	return "", fmt.Errorf("unknown ticket action %q", raw)
}

// RequiresElevation reports actions only moderators and admins may perform.
func (a TicketAction) RequiresElevation() bool {
	return a == TicketActionInProgress || a == TicketActionSolved
}

// ticketTransitions lists every legal (status, action) pair. A target equal to the
// current status is a no-op; missing pairs are illegal.
var ticketTransitions = map[TicketStatus]map[TicketAction]TicketStatus{
	TicketStatusOpen: {
		TicketActionOpen:       TicketStatusOpen,
		TicketActionInProgress: TicketStatusInProgress,
	},
	TicketStatusInProgress: {
		TicketActionInProgress: TicketStatusInProgress,
		TicketActionSolved:     TicketStatusSolved,
	},
	TicketStatusSolved: {
		TicketActionSolved: TicketStatusSolved,
		TicketActionClosed: TicketStatusClosed,
	},
	TicketStatusClosed: {
		TicketActionClosed: TicketStatusClosed,
	},
}

// NextTicketStatus resolves the status reached by applying action to current.
func NextTicketStatus(current TicketStatus, action TicketAction) (TicketStatus, error) {
	next, ok := ticketTransitions[current][action]
	if !ok {
		return current, fmt.Errorf("%w: %s from %s", ErrIllegalTransition, action, current)
	}
	return next, nil
}

// Ticket is a support request raised by an account.
type Ticket struct {
	ID                  string
	OwnerID             string
	Subject             string
	Description         string
	Status              TicketStatus
	AssignedModeratorID *string
	AssignedAt          *time.Time
	SolvedAt            *time.Time
	ClosedAt            *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Apply moves the ticket according to action and stamps the matching denormalized
// fields. It reports false for a no-op; the ticket is untouched on error.
func (t *Ticket) Apply(action TicketAction, actorID string, at time.Time) (bool, error) {
	next, err := NextTicketStatus(t.Status, action)
	if err != nil {
		return false, err
	}
	if next == t.Status {
		return false, nil
	}

	switch next {
	case TicketStatusInProgress:
		moderator := actorID
		t.AssignedModeratorID = &moderator
		t.AssignedAt = &at
	case TicketStatusSolved:
		t.SolvedAt = &at
	case TicketStatusClosed:
		t.ClosedAt = &at
	}
	t.Status = next
	t.UpdatedAt = at
	return true, nil
}
