//go:build !integration

package usecase_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/domain/ports/adapter"
	"ai-access-platform/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// MockTxManager runs the callback directly; unit tests do not exercise
// real transaction semantics.
type MockTxManager struct {
	WithTxFunc func(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, opts, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Mock ActivationCodeRepository ----

type MockCodeRepo struct {
	mu    sync.RWMutex
	store map[string]*model.ActivationCode // by ID

	SaveFunc              func(ctx context.Context, tx repository.Tx, c *model.ActivationCode) error
	FindByCodeFunc        func(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error)
	DeactivateExpiredFunc func(ctx context.Context, tx repository.Tx, now time.Time) (int, error)
}

var _ repository.ActivationCodeRepository = (*MockCodeRepo)(nil)

func NewMockCodeRepo() *MockCodeRepo {
	return &MockCodeRepo{store: make(map[string]*model.ActivationCode)}
}

func (m *MockCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.ActivationCode) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MockCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error) {
	if m.FindByCodeFunc != nil {
		return m.FindByCodeFunc(ctx, tx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ActivationCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCodeRepo) FindClaimedByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.ActivationCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.Claimed && c.ClaimedByUserID != nil && *c.ClaimedByUserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCodeRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.ActivationCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.ActivationCode, 0, len(m.store))
	for _, c := range m.store {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockCodeRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *MockCodeRepo) CountClaimed(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.store {
		if c.Claimed {
			n++
		}
	}
	return n, nil
}

func (m *MockCodeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok || c.Claimed {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MockCodeRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	if m.DeactivateExpiredFunc != nil {
		return m.DeactivateExpiredFunc(ctx, tx, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.store {
		if c.Active && c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
			c.Active = false
			n++
		}
	}
	return n, nil
}

// ---- Mock AccessStatusRepository ----

type MockStatusRepo struct {
	mu    sync.RWMutex
	store map[string]*model.AccessStatus

	SaveFunc func(ctx context.Context, tx repository.Tx, st *model.AccessStatus) error
	FindFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.AccessStatus, error)
}

var _ repository.AccessStatusRepository = (*MockStatusRepo)(nil)

func NewMockStatusRepo() *MockStatusRepo {
	return &MockStatusRepo{store: make(map[string]*model.AccessStatus)}
}

func (m *MockStatusRepo) Save(ctx context.Context, tx repository.Tx, st *model.AccessStatus) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, st)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *st
	m.store[st.UserID] = &cp
	return nil
}

func (m *MockStatusRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.AccessStatus, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, tx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *MockStatusRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int)
	for _, st := range m.store {
		out[st.Status]++
	}
	return out, nil
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.User, 0, len(m.store))
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *MockUserRepo) CountInactiveUsers(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.store {
		if u.LastSeenAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ---- Mock ModelPricingRepository ----

type MockPricingRepo struct {
	mu    sync.RWMutex
	store map[string]*model.ModelPricing // by model name
}

var _ repository.ModelPricingRepository = (*MockPricingRepo)(nil)

func NewMockPricingRepo() *MockPricingRepo {
	return &MockPricingRepo{store: make(map[string]*model.ModelPricing)}
}

func (m *MockPricingRepo) Create(ctx context.Context, tx repository.Tx, p *model.ModelPricing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.ModelName]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *p
	m.store[p.ModelName] = &cp
	return nil
}

func (m *MockPricingRepo) Update(ctx context.Context, tx repository.Tx, p *model.ModelPricing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.ModelName]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	m.store[p.ModelName] = &cp
	return nil
}

func (m *MockPricingRepo) GetByModelName(ctx context.Context, tx repository.Tx, name string) (*model.ModelPricing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[name]
	if !ok || !p.Active {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPricingRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.ModelPricing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.ModelPricing, 0, len(m.store))
	for _, p := range m.store {
		if p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock SelectionLogRepository ----

type MockSelectionLogRepo struct {
	mu         sync.Mutex
	Selections []*model.SelectionRecord
	Feedback   []*model.ModelFeedback
	Stats      map[string]*model.ModelStats

	AppendSelectionFunc func(ctx context.Context, tx repository.Tx, rec *model.SelectionRecord) error
	SaveStatsFunc       func(ctx context.Context, tx repository.Tx, st *model.ModelStats) error
}

var _ repository.SelectionLogRepository = (*MockSelectionLogRepo)(nil)

func NewMockSelectionLogRepo() *MockSelectionLogRepo {
	return &MockSelectionLogRepo{Stats: make(map[string]*model.ModelStats)}
}

func (m *MockSelectionLogRepo) AppendSelection(ctx context.Context, tx repository.Tx, rec *model.SelectionRecord) error {
	if m.AppendSelectionFunc != nil {
		return m.AppendSelectionFunc(ctx, tx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Selections = append(m.Selections, rec)
	return nil
}

func (m *MockSelectionLogRepo) AppendFeedback(ctx context.Context, tx repository.Tx, fb *model.ModelFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Feedback = append(m.Feedback, fb)
	return nil
}

func (m *MockSelectionLogRepo) SaveStats(ctx context.Context, tx repository.Tx, st *model.ModelStats) error {
	if m.SaveStatsFunc != nil {
		return m.SaveStatsFunc(ctx, tx, st)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *st
	m.Stats[st.ModelID] = &cp
	return nil
}

func (m *MockSelectionLogRepo) LoadStats(ctx context.Context, tx repository.Tx) ([]*model.ModelStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.ModelStats, 0, len(m.Stats))
	for _, st := range m.Stats {
		cp := *st
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock AIServiceAdapter ----

type MockAI struct {
	mu sync.Mutex

	CompleteFunc    func(ctx context.Context, model string, msgs []adapter.Message) (string, error)
	CountTokensFunc func(ctx context.Context, model string, msgs []adapter.Message) (int, error)

	CompleteCalls []string // model used per call
}

var _ adapter.AIServiceAdapter = (*MockAI)(nil)

func (m *MockAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"gpt-4o-mini"}, nil
}

func (m *MockAI) GetModelInfo(name string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: name}, nil
}

func (m *MockAI) CountTokens(ctx context.Context, name string, msgs []adapter.Message) (int, error) {
	if m.CountTokensFunc != nil {
		return m.CountTokensFunc(ctx, name, msgs)
	}
	total := 0
	for _, msg := range msgs {
		total += len(strings.Fields(msg.Content))
	}
	return total, nil
}

func (m *MockAI) Complete(ctx context.Context, name string, msgs []adapter.Message, maxTokens int) (string, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, name)
	m.mu.Unlock()
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, name, msgs)
	}
	return "general", nil
}

// ---- In-memory decision cache ----

type memDecisionCache struct {
	mu          sync.Mutex
	store       map[string]*model.AccessStatus
	Invalidated []string
}

func newMemDecisionCache() *memDecisionCache {
	return &memDecisionCache{store: make(map[string]*model.AccessStatus)}
}

func (c *memDecisionCache) Get(ctx context.Context, userID string) (*model.AccessStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.store[userID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (c *memDecisionCache) Set(ctx context.Context, st *model.AccessStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *st
	c.store[st.UserID] = &cp
	return nil
}

func (c *memDecisionCache) Invalidate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, userID)
	c.Invalidated = append(c.Invalidated, userID)
	return nil
}
