package model

import (
	"time"
)

// Access status labels. Exactly one applies to a user at any time.
const (
	AccessStatusNone      = "no_access"
	AccessStatusActive    = "active"
	AccessStatusSuspended = "suspended"
	AccessStatusBlocked   = "blocked"
)

// Machine codes carried alongside the human-readable message.
const (
	AccessCodeNone      = "NO_ACCESS"
	AccessCodeActive    = "ACCESS_GRANTED"
	AccessCodeSuspended = "ACCESS_SUSPENDED"
	AccessCodeBlocked   = "ACCOUNT_BLOCKED"
)

// AccessStatus is the per-user record of whether AI features are enabled.
// A user has at most one row; it is created implicitly with no_access
// defaults the first time their access is checked.
type AccessStatus struct {
	UserID      string
	HasAccess   bool
	IsSuspended bool
	IsBlocked   bool
	Status      string
	Message     string
	Code        string
	UpdatedAt   time.Time
}

// NewAccessStatus returns the implicit default row for a user that has never
// redeemed a code.
func NewAccessStatus(userID string) *AccessStatus {
	return &AccessStatus{
		UserID:    userID,
		Status:    AccessStatusNone,
		Message:   "AI access required. Please activate your account with an access code.",
		Code:      AccessCodeNone,
		UpdatedAt: time.Now(),
	}
}

// Grant flips the row to the active state after a successful redemption.
func (s *AccessStatus) Grant() {
	s.HasAccess = true
	s.IsSuspended = false
	s.Status = AccessStatusActive
	s.Message = "You have AI access"
	s.Code = AccessCodeActive
	s.UpdatedAt = time.Now()
}

// Suspend marks access as suspended without removing the underlying grant.
// A block outranks the suspension, so a blocked row keeps its label.
func (s *AccessStatus) Suspend() {
	s.IsSuspended = true
	s.UpdatedAt = time.Now()
	if s.IsBlocked {
		return
	}
	s.Status = AccessStatusSuspended
	s.Message = "Your AI access has been suspended. Please contact support for more information."
	s.Code = AccessCodeSuspended
}

// Unsuspend restores the state that matches the remaining flags.
func (s *AccessStatus) Unsuspend() {
	s.IsSuspended = false
	s.UpdatedAt = time.Now()
	if s.IsBlocked {
		return
	}
	if s.HasAccess {
		s.Grant()
		return
	}
	s.Status = AccessStatusNone
	s.Message = "AI access required. Please activate your account with an access code."
	s.Code = AccessCodeNone
}

// Block denies the user regardless of any grant they hold.
func (s *AccessStatus) Block() {
	s.IsBlocked = true
	s.Status = AccessStatusBlocked
	s.Message = "Your account has been blocked. Please contact support."
	s.Code = AccessCodeBlocked
	s.UpdatedAt = time.Now()
}

// Unblock lifts a block; the remaining flags decide the resulting state.
func (s *AccessStatus) Unblock() {
	s.IsBlocked = false
	switch {
	case s.IsSuspended:
		s.Suspend()
	case s.HasAccess:
		s.Grant()
	default:
		s.Status = AccessStatusNone
		s.Message = "AI access required. Please activate your account with an access code."
		s.Code = AccessCodeNone
		s.UpdatedAt = time.Now()
	}
}

// Revoke removes the grant entirely, returning the row to no_access.
func (s *AccessStatus) Revoke() {
	s.HasAccess = false
	s.IsSuspended = false
	s.Status = AccessStatusNone
	s.Message = "AI access required. Please activate your account with an access code."
	s.Code = AccessCodeNone
	s.UpdatedAt = time.Now()
}

// Allowed reports whether the row, on its own, permits AI features.
func (s *AccessStatus) Allowed() bool {
	return s.HasAccess && !s.IsSuspended && !s.IsBlocked
}
