package ai

import (
	"context"

	"ai-access-platform/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*LimitedAdapter)(nil)

// LimitedAdapter bounds concurrent upstream calls with a semaphore so a
// burst of classification requests cannot exhaust provider quotas.
type LimitedAdapter struct {
	inner adapter.AIServiceAdapter
	sem   chan struct{}
}

func NewLimitedAdapter(inner adapter.AIServiceAdapter, limit int) *LimitedAdapter {
	if limit <= 0 {
		limit = 16
	}
	return &LimitedAdapter{inner: inner, sem: make(chan struct{}, limit)}
}

func (l *LimitedAdapter) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *LimitedAdapter) release() { <-l.sem }

func (l *LimitedAdapter) ListModels(ctx context.Context) ([]string, error) {
	return l.inner.ListModels(ctx)
}

func (l *LimitedAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return l.inner.GetModelInfo(model)
}

func (l *LimitedAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return l.inner.CountTokens(ctx, model, messages)
}

func (l *LimitedAdapter) Complete(ctx context.Context, model string, messages []adapter.Message, maxTokens int) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.release()
	return l.inner.Complete(ctx, model, messages, maxTokens)
}
