package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/stay-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookingCreated      EventType = "BOOKING_CREATED"
	EventBookingCanceled     EventType = "BOOKING_CANCELED"
	EventRoleChangeRequested EventType = "CHANGEROLE_REQUESTED"
	EventRoleChangeAccepted  EventType = "CHANGEROLE_ACCEPTED"
	EventRoleChangeRejected  EventType = "CHANGEROLE_REJECTED"
	EventTicketStatusChanged EventType = "TICKET_STATUS_CHANGED"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	AccountID string      `json:"account_id"`
	Role      domain.Role `json:"role"`
}

// ActorOf converts the caller of an operation into event metadata.
func ActorOf(actor domain.Actor) Actor {
	return Actor{AccountID: actor.AccountID, Role: actor.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	AggregateID string    `json:"aggregate_id"`
	Actor       Actor     `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// BookingCreatedPayload payload.
type BookingCreatedPayload struct {
	ReservationID    string          `json:"reservation_id"`
	ListingID        string          `json:"listing_id"`
	GuestID          string          `json:"guest_id"`
	HostID           string          `json:"host_id"`
	CheckIn          string          `json:"check_in"`
	CheckOut         string          `json:"check_out"`
	Guests           int             `json:"guests"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	ConfirmationCode string          `json:"confirmation_code"`
	CouponCode       *string         `json:"coupon_code,omitempty"`
}

// BookingCanceledPayload payload.
type BookingCanceledPayload struct {
	ReservationID    string          `json:"reservation_id"`
	ListingID        string          `json:"listing_id"`
	GuestID          string          `json:"guest_id"`
	HostID           string          `json:"host_id"`
	RefundedAmount   decimal.Decimal `json:"refunded_amount"`
	ConfirmationCode string          `json:"confirmation_code"`
}

// RoleChangePayload payload shared by the role change events.
type RoleChangePayload struct {
	RequestID     string                  `json:"request_id"`
	RequesterID   string                  `json:"requester_id"`
	RequestedRole domain.Role             `json:"requested_role"`
	Status        domain.RoleChangeStatus `json:"status"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OwnerID   string              `json:"owner_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Action    domain.TicketAction `json:"action"`
}
