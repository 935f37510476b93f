package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"ai-access-platform/internal/config"
	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/domain/ports/adapter"
	"ai-access-platform/internal/domain/ports/repository"
	"ai-access-platform/internal/infra/logging"
	"ai-access-platform/internal/infra/metrics"
	"ai-access-platform/internal/infra/worker"
)

// taskDescriptions feeds the classifier system prompt.
var taskDescriptions = map[model.TaskType]string{
	model.TaskChat:          "General conversation, simple Q&A, basic information requests",
	model.TaskCode:          "Writing, generating, or explaining code in any programming language",
	model.TaskFixCode:       "Debugging, refactoring, or improving existing code",
	model.TaskMath:          "Mathematical calculations, equations, logic problems",
	model.TaskCreative:      "Stories, poems, essays, articles, or other creative writing",
	model.TaskReasoning:     "Analysis, comparison, explanation of causes and trade-offs",
	model.TaskTranslation:   "Non-English content, translation tasks, or language analysis",
	model.TaskSummarization: "Summarizing or condensing content, extracting key points",
	model.TaskGeneral:       "Anything that fits no other category",
}

// taskPatterns drives the cheap first-pass detection. The fractions of
// matched patterns per task become the detection score.
var taskPatterns = map[model.TaskType][]*regexp.Regexp{
	model.TaskCode: compilePatterns(
		`def\s+\w+\s*\(`,
		`function\s+\w+\s*\(`,
		`class\s+\w+`,
		`import\s+\w+`,
		`from\s+\w+\s+import`,
		`console\.log`,
		`print\(`,
		`git\s+`,
		`docker\s+`,
		`python\s+`,
		`javascript`,
		`typescript`,
		`react`,
		`html`,
		`css`,
		`algorithm`,
		`data structure`,
		`how to (write|implement|create).*code`,
	),
	model.TaskFixCode: compilePatterns(
		`fix\s+(this|my|the)\s+(code|bug|error)`,
		`debug`,
		`refactor`,
		`traceback`,
		`stack trace`,
		`exception`,
		`doesn'?t (work|compile)`,
	),
	model.TaskMath: compilePatterns(
		`solve`,
		`equation`,
		`calculate`,
		`integral`,
		`derivative`,
		`probability`,
		`\d+\s*[-+*/^]\s*\d+`,
	),
	model.TaskCreative: compilePatterns(
		`write (a|an|the)`,
		`story`,
		`poem`,
		`essay`,
		`article`,
		`blog post`,
		`creative`,
	),
	model.TaskReasoning: compilePatterns(
		`why`,
		`how (does|do|can|should|would|will)`,
		`explain`,
		`analyze`,
		`compare`,
		`contrast`,
		`what are the (pros|cons|advantages|disadvantages)`,
	),
	model.TaskTranslation: compilePatterns(
		`translate`,
		`in (french|german|spanish|italian|japanese|chinese|russian|farsi|persian)`,
		`what does .* mean in`,
	),
	model.TaskSummarization: compilePatterns(
		`summarize`,
		`summarise`,
		`tl;?dr`,
		`key points`,
		`condense`,
	),
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

// RouterUseCase picks the best model for a prompt based on detected task
// type, accumulated performance, and the user's preference.
type RouterUseCase interface {
	Suggest(ctx context.Context, userID, prompt, userPreference string, lockPreference bool) (*model.ModelSelection, error)
	RecordFeedback(ctx context.Context, modelTarget string, rating int, taskType, comment string) error
	// ObserveResult feeds completion outcomes back into the ranking.
	ObserveResult(modelID string, success bool, latencyMs int64, task model.TaskType)
	// LoadStats seeds the in-memory counters from storage, FlushStats
	// writes them back. Both run at startup / on a schedule.
	LoadStats(ctx context.Context) error
	FlushStats(ctx context.Context) error
}

type routerUseCase struct {
	pricing repository.ModelPricingRepository
	selLog  repository.SelectionLogRepository
	ai      adapter.AIServiceAdapter
	pool    *worker.Pool
	cfg     *config.AIConfig
	log     *zerolog.Logger

	mu    sync.RWMutex
	stats map[string]*model.ModelStats
	dirty bool

	entropy *ulid.MonotonicEntropy
	entMu   sync.Mutex
}

var _ RouterUseCase = (*routerUseCase)(nil)

func NewRouterUseCase(
	pricing repository.ModelPricingRepository,
	selLog repository.SelectionLogRepository,
	ai adapter.AIServiceAdapter,
	pool *worker.Pool,
	cfg *config.AIConfig,
	logger *zerolog.Logger,
) *routerUseCase {
	return &routerUseCase{
		pricing: pricing,
		selLog:  selLog,
		ai:      ai,
		pool:    pool,
		cfg:     cfg,
		log:     logger,
		stats:   make(map[string]*model.ModelStats),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (u *routerUseCase) Suggest(ctx context.Context, userID, prompt, userPreference string, lockPreference bool) (*model.ModelSelection, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(ctx, u.log, "router.Suggest")()

	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrInvalidArgument
	}

	available, err := u.availableModels(ctx)
	if err != nil {
		return nil, err
	}

	task, confidence, matched := detectTaskType(prompt)
	if !matched && u.ai != nil {
		if classified, ok := u.classifyPrompt(ctx, prompt); ok {
			task, confidence = classified, 0.7
		}
	}

	ranked := u.rank(task, available)

	sel := &model.ModelSelection{
		TaskType:     task,
		Confidence:   confidence,
		RankedModels: ranked,
	}

	prefValid := userPreference != "" && contains(available, userPreference)
	suggested := u.cfg.DefaultModel
	if len(ranked) > 0 {
		suggested = ranked[0].ModelID
	}

	switch {
	case lockPreference && prefValid:
		sel.ModelID = userPreference
		sel.Reason = "User has locked their model preference"
		sel.Confidence = 1.0
		sel.UserPreferenceRespected = true
	case prefValid:
		sel.ModelID = userPreference
		sel.SuggestedModel = suggested
		sel.Reason = fmt.Sprintf("Using user's preferred model. Recommended: %s for %s task", suggested, task)
		sel.Confidence = 0.9
		sel.UserPreferenceRespected = true
	default:
		sel.ModelID = suggested
		sel.Reason = fmt.Sprintf("Task detected as %q with confidence %.1f. Selected best performing model for this task.", task, confidence)
	}

	u.fitContextWindow(ctx, sel, prompt, ranked)
	sel.Rank = rankOf(ranked, sel.ModelID)

	metrics.IncModelSelection(sel.ModelID, string(task), sel.UserPreferenceRespected)
	u.logSelection(userID, sel)
	log.Debug().Str("model", sel.ModelID).Str("task", string(task)).Msg("model selected")
	return sel, nil
}

// fitContextWindow swaps a picked model whose context window cannot hold
// the prompt for the best ranked model that can. Token counting is
// best-effort; counting failures leave the pick alone.
func (u *routerUseCase) fitContextWindow(ctx context.Context, sel *model.ModelSelection, prompt string, ranked []model.RankedModel) {
	if u.ai == nil {
		return
	}
	tokens, err := u.ai.CountTokens(ctx, sel.ModelID, []adapter.Message{{Role: "user", Content: prompt}})
	if err != nil || tokens <= 0 {
		return
	}
	fits := func(modelID string) bool {
		p, err := u.pricing.GetByModelName(ctx, repository.NoTX, modelID)
		if err != nil || p.ContextWindow <= 0 {
			return true
		}
		return tokens <= p.ContextWindow
	}
	if fits(sel.ModelID) {
		return
	}
	for _, rm := range ranked {
		if rm.ModelID == sel.ModelID {
			continue
		}
		if fits(rm.ModelID) {
			logging.With(ctx, u.log).Info().
				Str("from", sel.ModelID).Str("to", rm.ModelID).Int("prompt_tokens", tokens).
				Msg("prompt exceeds context window, rerouting")
			sel.SuggestedModel = sel.ModelID
			sel.ModelID = rm.ModelID
			sel.Reason = fmt.Sprintf("Prompt of %d tokens exceeds the context window of the preferred model", tokens)
			sel.UserPreferenceRespected = false
			return
		}
	}
}

func (u *routerUseCase) RecordFeedback(ctx context.Context, modelTarget string, rating int, taskType, comment string) error {
	defer logging.TraceDuration(ctx, u.log, "router.RecordFeedback")()

	if modelTarget == "" || rating < 1 || rating > 5 {
		return domain.ErrInvalidArgument
	}
	task := model.TaskGeneral
	if taskType != "" {
		if !model.ValidTaskType(taskType) {
			return domain.ErrInvalidArgument
		}
		task = model.TaskType(taskType)
	}

	fb := &model.ModelFeedback{
		ID:        uuid.NewString(),
		ModelID:   modelTarget,
		Rating:    rating,
		TaskType:  task,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	if err := u.selLog.AppendFeedback(ctx, repository.NoTX, fb); err != nil {
		return err
	}

	// A rating of 4 or 5 counts as a successful response for ranking.
	u.ObserveResult(modelTarget, rating >= 4, 0, task)
	metrics.IncModelFeedback(modelTarget, rating)
	return nil
}

func (u *routerUseCase) ObserveResult(modelID string, success bool, latencyMs int64, task model.TaskType) {
	u.mu.Lock()
	defer u.mu.Unlock()
	st, ok := u.stats[modelID]
	if !ok {
		st = model.NewModelStats(modelID)
		u.stats[modelID] = st
	}
	st.Requests++
	st.LatencyMsum += latencyMs
	if success {
		st.Successes++
		st.TaskSuccess[task]++
	}
	st.UpdatedAt = time.Now()
	u.dirty = true
}

func (u *routerUseCase) LoadStats(ctx context.Context) error {
	loaded, err := u.selLog.LoadStats(ctx, repository.NoTX)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, st := range loaded {
		u.stats[st.ModelID] = st
	}
	u.dirty = false
	logging.With(ctx, u.log).Info().Int("models", len(loaded)).Msg("model performance loaded")
	return nil
}

func (u *routerUseCase) FlushStats(ctx context.Context) error {
	u.mu.Lock()
	if !u.dirty {
		u.mu.Unlock()
		return nil
	}
	snapshot := make([]*model.ModelStats, 0, len(u.stats))
	for _, st := range u.stats {
		cp := *st
		cp.TaskSuccess = make(map[model.TaskType]int64, len(st.TaskSuccess))
		for k, v := range st.TaskSuccess {
			cp.TaskSuccess[k] = v
		}
		snapshot = append(snapshot, &cp)
	}
	u.dirty = false
	u.mu.Unlock()

	for _, st := range snapshot {
		if err := u.selLog.SaveStats(ctx, repository.NoTX, st); err != nil {
			// Keep the counters marked dirty so the next tick retries.
			u.mu.Lock()
			u.dirty = true
			u.mu.Unlock()
			return err
		}
	}
	return nil
}

func (u *routerUseCase) availableModels(ctx context.Context) ([]string, error) {
	priced, err := u.pricing.ListActive(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	if len(priced) == 0 {
		return u.cfg.Models, nil
	}
	out := make([]string, 0, len(priced))
	for _, p := range priced {
		out = append(out, p.ModelName)
	}
	return out, nil
}

func (u *routerUseCase) rank(task model.TaskType, available []string) []model.RankedModel {
	u.mu.RLock()
	defer u.mu.RUnlock()

	ranked := make([]model.RankedModel, 0, len(available))
	for _, id := range available {
		st, ok := u.stats[id]
		if !ok {
			st = model.NewModelStats(id)
		}
		ranked = append(ranked, model.RankedModel{
			ModelID:         id,
			SuccessRate:     st.SuccessRate(),
			TaskSuccessRate: st.TaskSuccessRate(task),
			TotalRequests:   st.Requests,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.TaskSuccessRate != b.TaskSuccessRate {
			return a.TaskSuccessRate > b.TaskSuccessRate
		}
		if a.SuccessRate != b.SuccessRate {
			return a.SuccessRate > b.SuccessRate
		}
		return a.TotalRequests > b.TotalRequests
	})
	return ranked
}

// classifyPrompt asks the fast classifier model for a single category
// word. Returns false on any failure so callers keep the rule result.
func (u *routerUseCase) classifyPrompt(ctx context.Context, prompt string) (model.TaskType, bool) {
	start := time.Now()

	var b strings.Builder
	b.WriteString("You are a prompt classifier. Classify the user prompt into exactly ONE of these categories:\n")
	for _, t := range model.TaskTypes {
		fmt.Fprintf(&b, "- %s: %s\n", t, taskDescriptions[t])
	}
	b.WriteString("Respond with ONLY the category name and nothing else.")

	msgs := []adapter.Message{
		{Role: "system", Content: b.String()},
		{Role: "user", Content: prompt},
	}
	resp, err := u.ai.Complete(ctx, u.cfg.ClassifierModel, msgs, 20)
	metrics.ObserveClassifierLatency("llm", float64(time.Since(start).Milliseconds()))
	if err != nil {
		u.log.Warn().Err(err).Msg("prompt classification failed, keeping rule result")
		return model.TaskGeneral, false
	}

	cleaned := strings.ToLower(strings.TrimSpace(resp))
	cleaned = strings.Trim(cleaned, `'".`)
	if !model.ValidTaskType(cleaned) {
		u.log.Warn().Str("response", cleaned).Msg("classifier returned unknown task type")
		return model.TaskGeneral, false
	}
	return model.TaskType(cleaned), true
}

func (u *routerUseCase) logSelection(userID string, sel *model.ModelSelection) {
	rec := &model.SelectionRecord{
		ID:                      u.newULID(),
		UserID:                  userID,
		SelectedModel:           sel.ModelID,
		SuggestedModel:          sel.SuggestedModel,
		TaskType:                sel.TaskType,
		Confidence:              sel.Confidence,
		UserPreferenceRespected: sel.UserPreferenceRespected,
		CreatedAt:               time.Now(),
	}
	write := func(ctx context.Context) error {
		return u.selLog.AppendSelection(ctx, repository.NoTX, rec)
	}
	if u.pool == nil {
		if err := write(context.Background()); err != nil {
			u.log.Warn().Err(err).Msg("selection log write failed")
		}
		return
	}
	if err := u.pool.Submit(write); err != nil {
		u.log.Warn().Err(err).Msg("selection log submit dropped")
	}
}

func (u *routerUseCase) newULID() string {
	u.entMu.Lock()
	defer u.entMu.Unlock()
	return ulid.MustNew(ulid.Now(), u.entropy).String()
}

// detectTaskType scores the prompt against every task's pattern list.
// Returns the best scoring task, or general at 0.5 when nothing stands
// out; matched reports whether any task cleared the threshold, so the
// caller knows when to escalate to LLM classification.
func detectTaskType(prompt string) (task model.TaskType, confidence float64, matched bool) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return model.TaskGeneral, 0.5, false
	}

	bestTask := model.TaskGeneral
	bestScore := 0.0
	for _, task := range model.TaskTypes {
		patterns := taskPatterns[task]
		if len(patterns) == 0 {
			continue
		}
		matches := 0
		for _, re := range patterns {
			if re.MatchString(trimmed) {
				matches++
			}
		}
		score := float64(matches) / float64(len(patterns))
		if score > bestScore {
			bestTask, bestScore = task, score
		}
	}
	if bestScore > 0.1 {
		return bestTask, bestScore, true
	}
	return model.TaskGeneral, 0.5, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func rankOf(ranked []model.RankedModel, modelID string) int {
	for i, rm := range ranked {
		if rm.ModelID == modelID {
			return i + 1
		}
	}
	return 0
}
