package domain

import (
	"errors"
	"time"
)

// RoleChangeStatus enumerates lifecycle states for role change requests.
type RoleChangeStatus string

const (
	RoleChangePending  RoleChangeStatus = "PENDING"
	RoleChangeAccepted RoleChangeStatus = "ACCEPTED"
	RoleChangeRejected RoleChangeStatus = "REJECTED"
)

// RoleChangeDecision is an admin verdict on a pending request.
type RoleChangeDecision string

const (
	RoleChangeAccept RoleChangeDecision = "accept"
	RoleChangeReject RoleChangeDecision = "reject"
)

// ErrRequestAlreadyProcessed is returned when deciding on a request that is no longer pending.
var ErrRequestAlreadyProcessed = errors.New("request already processed")

// ErrUnknownDecision is returned for a verdict other than accept or reject.
var ErrUnknownDecision = errors.New("unknown role change decision")

var roleChangeTransitions = map[RoleChangeStatus]map[RoleChangeDecision]RoleChangeStatus{
	RoleChangePending: {
		RoleChangeAccept: RoleChangeAccepted,
		RoleChangeReject: RoleChangeRejected,
	},
}

// RoleChangeRequest asks an admin to grant an account a different role.
type RoleChangeRequest struct {
	ID            string
	RequesterID   string
	RequestedRole Role
	Motivation    string
	Status        RoleChangeStatus
	FulfilledBy   *string
	FulfilledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTerminal reports whether the request has already been decided.
func (r RoleChangeRequest) IsTerminal() bool {
	return r.Status != RoleChangePending
}

// Decide records the admin's verdict. Terminal requests are left untouched.
func (r *RoleChangeRequest) Decide(decision RoleChangeDecision, adminID string, at time.Time) error {
	if decision != RoleChangeAccept && decision != RoleChangeReject {
		return ErrUnknownDecision
	}
	next, ok := roleChangeTransitions[r.Status][decision]
	if !ok {
		return ErrRequestAlreadyProcessed
	}
	fulfiller := adminID
	r.Status = next
	r.FulfilledBy = &fulfiller
	r.FulfilledAt = &at
	r.UpdatedAt = at
	return nil
}
