package ai

import (
	"context"
	"errors"

	"ai-access-platform/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAdapter)(nil)

// NoopAdapter is used when no provider key is configured. The router
// then relies on rule-based detection alone.
type NoopAdapter struct{}

func (NoopAdapter) ListModels(ctx context.Context) ([]string, error) { return nil, nil }

func (NoopAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: model}, nil
}

func (NoopAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return estimateTokens(model, messages)
}

func (NoopAdapter) Complete(ctx context.Context, model string, messages []adapter.Message, maxTokens int) (string, error) {
	return "", errors.New("ai: no provider configured")
}
