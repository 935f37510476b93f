package model

import (
	"time"

	"ai-access-platform/internal/domain"

	"github.com/google/uuid"
)

// ActivationCode represents a single-use code that grants AI feature access
// to the account that redeems it.
type ActivationCode struct {
	ID               string
	Code             string
	Active           bool
	Claimed          bool
	ClaimedByUserID  *string    // Pointer to allow for NULL
	ClaimedAt        *time.Time // Pointer to allow for NULL
	CreatedByAdminID string
	Notes            string
	CreatedAt        time.Time
	ExpiresAt        *time.Time // Pointer to allow for NULL
}

func NewActivationCode(code, adminID, notes string, expiresAt *time.Time) (*ActivationCode, error) {
	if code == "" || adminID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &ActivationCode{
		ID:               uuid.NewString(),
		Code:             code,
		Active:           true,
		CreatedByAdminID: adminID,
		Notes:            notes,
		CreatedAt:        time.Now(),
		ExpiresAt:        expiresAt,
	}, nil
}

// IsExpired reports whether the code passed its expiry at the given instant.
// Codes without an expiry never expire.
func (c *ActivationCode) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Claim marks the code as redeemed by the given user. The caller is expected
// to run this inside a transaction that holds the code row.
func (c *ActivationCode) Claim(userID string, now time.Time) error {
	switch {
	case !c.Active:
		return domain.ErrCodeDeactivated
	case c.Claimed:
		return domain.ErrCodeAlreadyUsed
	case c.IsExpired(now):
		return domain.ErrCodeExpired
	}
	c.Claimed = true
	c.ClaimedByUserID = &userID
	c.ClaimedAt = &now
	return nil
}
