//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/usecase"
)

func TestStatsUseCase_Summary(t *testing.T) {
	ctx := context.Background()
	users := NewMockUserRepo()
	codes := NewMockCodeRepo()
	status := NewMockStatusRepo()
	uc := usecase.NewStatsUseCase(users, codes, status, newTestLogger())

	for _, id := range []string{"user-1", "user-2", "user-3"} {
		usr, err := model.NewUser(id, id+"@example.com")
		if err != nil {
			t.Fatal(err)
		}
		if err := users.Save(ctx, nil, usr); err != nil {
			t.Fatal(err)
		}
	}
	claimed, err := model.NewActivationCode("AAAA-BBBB-CCCC-DDDD", "admin-1", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := claimed.Claim("user-1", time.Now()); err != nil {
		t.Fatal(err)
	}
	free, err := model.NewActivationCode("EEEE-FFFF-GGGG-HHHH", "admin-1", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []*model.ActivationCode{claimed, free} {
		if err := codes.Save(ctx, nil, c); err != nil {
			t.Fatal(err)
		}
	}
	granted := model.NewAccessStatus("user-1")
	granted.Grant()
	blocked := model.NewAccessStatus("user-2")
	blocked.Block()
	for _, st := range []*model.AccessStatus{granted, blocked} {
		if err := status.Save(ctx, nil, st); err != nil {
			t.Fatal(err)
		}
	}

	sum, err := uc.Summary(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sum.TotalUsers != 3 {
		t.Errorf("expected 3 users, got %d", sum.TotalUsers)
	}
	if sum.TotalCodes != 2 || sum.ClaimedCodes != 1 {
		t.Errorf("unexpected code counts: %+v", sum)
	}
	if sum.UsersByStatus[model.AccessStatusActive] != 1 || sum.UsersByStatus[model.AccessStatusBlocked] != 1 {
		t.Errorf("unexpected status counts: %v", sum.UsersByStatus)
	}
}
