//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"ai-access-platform/internal/config"
	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/domain/ports/adapter"
	"ai-access-platform/internal/domain/ports/repository"
	"ai-access-platform/internal/usecase"
)

func testAIConfig() *config.AIConfig {
	return &config.AIConfig{
		ClassifierModel: "fast-classifier",
		DefaultModel:    "gpt-4o-mini",
		Models:          []string{"gpt-4o-mini", "deepseek-chat", "llama-3.1-8b"},
	}
}

func newRouterFixture(ai adapter.AIServiceAdapter) (*MockPricingRepo, *MockSelectionLogRepo, usecase.RouterUseCase) {
	pricing := NewMockPricingRepo()
	selLog := NewMockSelectionLogRepo()
	// nil pool makes selection log writes synchronous, which keeps
	// assertions deterministic.
	uc := usecase.NewRouterUseCase(pricing, selLog, ai, nil, testAIConfig(), newTestLogger())
	return pricing, selLog, uc
}

func TestRouterUseCase_Suggest(t *testing.T) {
	ctx := context.Background()

	t.Run("code prompt is routed without the classifier", func(t *testing.T) {
		ai := &MockAI{}
		_, selLog, uc := newRouterFixture(ai)

		sel, err := uc.Suggest(ctx, "user-1", "def fibonacci(n): how to implement this algorithm in python code", "", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sel.TaskType != model.TaskCode {
			t.Errorf("expected code task, got %s", sel.TaskType)
		}
		if len(ai.CompleteCalls) != 0 {
			t.Error("strong rule match must not call the classifier")
		}
		if len(selLog.Selections) != 1 {
			t.Fatalf("expected one selection record, got %d", len(selLog.Selections))
		}
		if selLog.Selections[0].UserID != "user-1" {
			t.Errorf("unexpected selection record: %+v", selLog.Selections[0])
		}
	})

	t.Run("ambiguous prompt falls back to LLM classification", func(t *testing.T) {
		ai := &MockAI{
			CompleteFunc: func(ctx context.Context, name string, msgs []adapter.Message) (string, error) {
				return "math", nil
			},
		}
		_, _, uc := newRouterFixture(ai)

		sel, err := uc.Suggest(ctx, "user-1", "17 plus what gives 40", "", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sel.TaskType != model.TaskMath {
			t.Errorf("expected classifier verdict, got %s", sel.TaskType)
		}
		if sel.Confidence != 0.7 {
			t.Errorf("expected classifier confidence 0.7, got %v", sel.Confidence)
		}
		if len(ai.CompleteCalls) != 1 || ai.CompleteCalls[0] != "fast-classifier" {
			t.Errorf("expected one classifier call, got %v", ai.CompleteCalls)
		}
	})

	t.Run("classifier failure keeps the rule result", func(t *testing.T) {
		ai := &MockAI{
			CompleteFunc: func(ctx context.Context, name string, msgs []adapter.Message) (string, error) {
				return "", errors.New("upstream down")
			},
		}
		_, _, uc := newRouterFixture(ai)

		sel, err := uc.Suggest(ctx, "user-1", "hello there", "", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sel.TaskType != model.TaskGeneral {
			t.Errorf("expected general fallback, got %s", sel.TaskType)
		}
	})

	t.Run("locked preference always wins", func(t *testing.T) {
		_, _, uc := newRouterFixture(&MockAI{})

		sel, err := uc.Suggest(ctx, "user-1", "def f(): import os # python code algorithm", "llama-3.1-8b", true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sel.ModelID != "llama-3.1-8b" {
			t.Errorf("expected locked preference, got %s", sel.ModelID)
		}
		if sel.Confidence != 1.0 || !sel.UserPreferenceRespected {
			t.Errorf("unexpected selection: %+v", sel)
		}
	})

	t.Run("unlocked preference is used but carries a suggestion", func(t *testing.T) {
		_, _, uc := newRouterFixture(&MockAI{})
		uc.ObserveResult("deepseek-chat", true, 100, model.TaskCode)

		sel, err := uc.Suggest(ctx, "user-1", "def f(): import os # python code algorithm", "llama-3.1-8b", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sel.ModelID != "llama-3.1-8b" || !sel.UserPreferenceRespected {
			t.Errorf("expected preference respected, got %+v", sel)
		}
		if sel.SuggestedModel != "deepseek-chat" {
			t.Errorf("expected the best ranked model suggested, got %q", sel.SuggestedModel)
		}
	})

	t.Run("unknown preference falls through to ranking", func(t *testing.T) {
		_, _, uc := newRouterFixture(&MockAI{})

		sel, err := uc.Suggest(ctx, "user-1", "def f(): import os # python code algorithm", "not-a-model", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sel.UserPreferenceRespected {
			t.Error("unknown preference must not be respected")
		}
		if sel.ModelID == "not-a-model" {
			t.Error("unknown preference must not be selected")
		}
	})

	t.Run("pricing catalog overrides the configured model list", func(t *testing.T) {
		pricing, _, uc := newRouterFixture(&MockAI{})
		if err := pricing.Create(ctx, nil, model.NewModelPricing("catalog-only", 1, 2, 128000)); err != nil {
			t.Fatal(err)
		}

		sel, err := uc.Suggest(ctx, "user-1", "hello there", "", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sel.ModelID != "catalog-only" {
			t.Errorf("expected the priced model, got %s", sel.ModelID)
		}
	})

	t.Run("empty prompt is rejected", func(t *testing.T) {
		_, _, uc := newRouterFixture(&MockAI{})
		if _, err := uc.Suggest(ctx, "user-1", "  ", "", false); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("oversized prompt is rerouted to a model with a larger window", func(t *testing.T) {
		ai := &MockAI{
			CountTokensFunc: func(ctx context.Context, name string, msgs []adapter.Message) (int, error) {
				return 9000, nil
			},
		}
		pricing, _, uc := newRouterFixture(ai)
		small := model.NewModelPricing("small-window", 1, 2, 4096)
		large := model.NewModelPricing("large-window", 1, 2, 128000)
		for _, p := range []*model.ModelPricing{small, large} {
			if err := pricing.Create(ctx, nil, p); err != nil {
				t.Fatal(err)
			}
		}

		sel, err := uc.Suggest(ctx, "user-1", "hello there", "small-window", true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sel.ModelID != "large-window" {
			t.Errorf("expected reroute to large-window, got %s", sel.ModelID)
		}
	})
}

func TestRouterUseCase_RecordFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("high rating counts as a success in the ranking", func(t *testing.T) {
		_, selLog, uc := newRouterFixture(&MockAI{})

		if err := uc.RecordFeedback(ctx, "deepseek-chat", 5, "code", "great"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(selLog.Feedback) != 1 || selLog.Feedback[0].Rating != 5 {
			t.Fatalf("expected feedback row, got %+v", selLog.Feedback)
		}

		sel, err := uc.Suggest(ctx, "user-1", "def f(): import os # python code algorithm", "", false)
		if err != nil {
			t.Fatal(err)
		}
		if sel.ModelID != "deepseek-chat" {
			t.Errorf("expected rated model to rank first, got %s", sel.ModelID)
		}
	})

	t.Run("validation", func(t *testing.T) {
		_, _, uc := newRouterFixture(&MockAI{})
		if err := uc.RecordFeedback(ctx, "", 5, "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for empty model, got %v", err)
		}
		if err := uc.RecordFeedback(ctx, "m", 6, "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for rating 6, got %v", err)
		}
		if err := uc.RecordFeedback(ctx, "m", 3, "not-a-task", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for bad task, got %v", err)
		}
	})
}

func TestRouterUseCase_StatsRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, selLog, uc := newRouterFixture(&MockAI{})

	uc.ObserveResult("deepseek-chat", true, 120, model.TaskCode)
	uc.ObserveResult("deepseek-chat", false, 300, model.TaskCode)
	if err := uc.FlushStats(ctx); err != nil {
		t.Fatal(err)
	}

	st, ok := selLog.Stats["deepseek-chat"]
	if !ok {
		t.Fatal("expected flushed stats")
	}
	if st.Requests != 2 || st.Successes != 1 {
		t.Errorf("unexpected counters: %+v", st)
	}

	// A second flush with no new observations is a no-op.
	selLog.Stats = map[string]*model.ModelStats{}
	if err := uc.FlushStats(ctx); err != nil {
		t.Fatal(err)
	}
	if len(selLog.Stats) != 0 {
		t.Error("expected clean flush to write nothing")
	}

	// Seed and reload.
	seeded := model.NewModelStats("llama-3.1-8b")
	seeded.Requests = 10
	seeded.Successes = 9
	seeded.TaskSuccess[model.TaskChat] = 9
	selLog.Stats["llama-3.1-8b"] = seeded
	if err := uc.LoadStats(ctx); err != nil {
		t.Fatal(err)
	}

	sel, err := uc.Suggest(ctx, "user-1", "hello there", "", false)
	if err != nil {
		t.Fatal(err)
	}
	if sel.ModelID != "llama-3.1-8b" {
		t.Errorf("expected loaded stats to drive ranking, got %s", sel.ModelID)
	}
}

func TestRouterUseCase_FlushRetriesAfterError(t *testing.T) {
	ctx := context.Background()
	_, selLog, uc := newRouterFixture(&MockAI{})

	uc.ObserveResult("deepseek-chat", true, 120, model.TaskCode)

	boom := errors.New("connection reset")
	selLog.SaveStatsFunc = func(ctx context.Context, tx repository.Tx, st *model.ModelStats) error {
		return boom
	}
	if err := uc.FlushStats(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected save error to surface, got %v", err)
	}

	// The counters are still dirty, so the next tick writes them out.
	selLog.SaveStatsFunc = nil
	if err := uc.FlushStats(ctx); err != nil {
		t.Fatal(err)
	}
	st, ok := selLog.Stats["deepseek-chat"]
	if !ok {
		t.Fatal("expected stats flushed on retry")
	}
	if st.Requests != 1 || st.Successes != 1 {
		t.Errorf("unexpected counters: %+v", st)
	}
}
