//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"ai-access-platform/internal/usecase"
)

func TestUserUseCase_RegisterOrFetch(t *testing.T) {
	ctx := context.Background()
	repo := NewMockUserRepo()
	uc := usecase.NewUserUseCase(repo, NewMockTxManager(), newTestLogger())

	t.Run("first login creates the user", func(t *testing.T) {
		u, err := uc.RegisterOrFetch(ctx, "user-1", "u1@example.com", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if u.ID != "user-1" || u.Email != "u1@example.com" || u.IsAdmin {
			t.Errorf("unexpected user: %+v", u)
		}
	})

	t.Run("subsequent login refreshes claims and last seen", func(t *testing.T) {
		before, err := repo.FindByID(ctx, nil, "user-1")
		if err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)

		u, err := uc.RegisterOrFetch(ctx, "user-1", "renamed@example.com", true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if u.Email != "renamed@example.com" || !u.IsAdmin {
			t.Errorf("expected refreshed claims, got %+v", u)
		}
		if !u.LastSeenAt.After(before.LastSeenAt) {
			t.Error("expected last seen to move forward")
		}
	})

	t.Run("list and counts", func(t *testing.T) {
		if _, err := uc.RegisterOrFetch(ctx, "user-2", "u2@example.com", false); err != nil {
			t.Fatal(err)
		}
		users, total, err := uc.List(ctx, 0, 10)
		if err != nil {
			t.Fatal(err)
		}
		if total != 2 || len(users) != 2 {
			t.Errorf("expected 2 users, got total=%d len=%d", total, len(users))
		}
		inactive, err := uc.CountInactiveSince(ctx, time.Now().Add(-time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		if inactive != 0 {
			t.Errorf("expected no inactive users, got %d", inactive)
		}
	})
}
