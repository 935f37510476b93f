//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"ai-access-platform/internal/domain"
)

func TestActivationCode_Claim(t *testing.T) {
	now := time.Now()

	t.Run("fresh code claims cleanly", func(t *testing.T) {
		ac, err := NewActivationCode("AAAA-BBBB-CCCC-DDDD", "admin-1", "", nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := ac.Claim("u-1", now); err != nil {
			t.Fatalf("Expected claim to succeed, got %v", err)
		}
		if !ac.Claimed || ac.ClaimedByUserID == nil || *ac.ClaimedByUserID != "u-1" {
			t.Errorf("Claim did not record the user: %+v", ac)
		}
	})

	t.Run("double claim fails", func(t *testing.T) {
		ac, _ := NewActivationCode("AAAA-BBBB-CCCC-DDDD", "admin-1", "", nil)
		_ = ac.Claim("u-1", now)
		if err := ac.Claim("u-2", now); !errors.Is(err, domain.ErrCodeAlreadyUsed) {
			t.Errorf("Expected ErrCodeAlreadyUsed, got %v", err)
		}
	})

	t.Run("deactivated code cannot be claimed", func(t *testing.T) {
		ac, _ := NewActivationCode("AAAA-BBBB-CCCC-DDDD", "admin-1", "", nil)
		ac.Active = false
		if err := ac.Claim("u-1", now); !errors.Is(err, domain.ErrCodeDeactivated) {
			t.Errorf("Expected ErrCodeDeactivated, got %v", err)
		}
	})

	t.Run("expired code cannot be claimed", func(t *testing.T) {
		past := now.Add(-time.Minute)
		ac, _ := NewActivationCode("AAAA-BBBB-CCCC-DDDD", "admin-1", "", &past)
		if err := ac.Claim("u-1", now); !errors.Is(err, domain.ErrCodeExpired) {
			t.Errorf("Expected ErrCodeExpired, got %v", err)
		}
	})

	t.Run("missing fields are rejected at construction", func(t *testing.T) {
		if _, err := NewActivationCode("", "admin-1", "", nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument for empty code, got %v", err)
		}
		if _, err := NewActivationCode("AAAA", "", "", nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument for empty admin, got %v", err)
		}
	})
}

func TestActivationCode_IsExpired(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)

	ac, _ := NewActivationCode("AAAA-BBBB-CCCC-DDDD", "admin-1", "", &future)
	if ac.IsExpired(now) {
		t.Error("Code with a future expiry should not be expired")
	}
	if !ac.IsExpired(now.Add(2 * time.Hour)) {
		t.Error("Code should expire after its deadline")
	}

	forever, _ := NewActivationCode("EEEE-FFFF-GGGG-HHHH", "admin-1", "", nil)
	if forever.IsExpired(now.Add(24 * 365 * time.Hour)) {
		t.Error("Code without an expiry should never expire")
	}
}
