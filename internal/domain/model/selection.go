package model

import (
	"time"
)

// TaskType classifies what kind of work a prompt asks for. The router maps
// each type to the model that historically handles it best.
type TaskType string

const (
	TaskChat          TaskType = "chat"
	TaskCode          TaskType = "code"
	TaskFixCode       TaskType = "fix_code"
	TaskMath          TaskType = "math"
	TaskCreative      TaskType = "creative"
	TaskReasoning     TaskType = "reasoning"
	TaskTranslation   TaskType = "translation"
	TaskSummarization TaskType = "summarization"
	TaskGeneral       TaskType = "general"
)

// TaskTypes lists every known task type, general last.
var TaskTypes = []TaskType{
	TaskChat, TaskCode, TaskFixCode, TaskMath, TaskCreative,
	TaskReasoning, TaskTranslation, TaskSummarization, TaskGeneral,
}

func ValidTaskType(s string) bool {
	for _, t := range TaskTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// ModelSelection is the outcome of routing one prompt.
type ModelSelection struct {
	ModelID                 string
	Reason                  string
	Confidence              float64
	TaskType                TaskType
	SuggestedModel          string // set when it differs from ModelID
	UserPreferenceRespected bool
	Rank                    int // 1-based position among ranked models, 0 if unranked
	RankedModels            []RankedModel
}

// RankedModel is one entry of the performance ranking returned with a selection.
type RankedModel struct {
	ModelID         string
	SuccessRate     float64
	TaskSuccessRate float64
	TotalRequests   int64
}

// ModelStats accumulates observed performance for one model. The router keeps
// these in memory and flushes them to storage periodically.
type ModelStats struct {
	ModelID     string
	Requests    int64
	Successes   int64
	LatencyMsum int64
	TaskSuccess map[TaskType]int64
	UpdatedAt   time.Time
}

func NewModelStats(modelID string) *ModelStats {
	return &ModelStats{
		ModelID:     modelID,
		TaskSuccess: make(map[TaskType]int64),
		UpdatedAt:   time.Now(),
	}
}

// SuccessRate defaults to 0.5 for models that have not served traffic yet so
// new models are not ranked below everything from the start.
func (s *ModelStats) SuccessRate() float64 {
	if s.Requests == 0 {
		return 0.5
	}
	return float64(s.Successes) / float64(s.Requests)
}

// TaskSuccessRate falls back to the overall rate when the model has never
// served this task, so a strong generalist is not ranked below an unknown.
func (s *ModelStats) TaskSuccessRate(t TaskType) float64 {
	if _, ok := s.TaskSuccess[t]; !ok {
		return s.SuccessRate()
	}
	var total int64
	for _, n := range s.TaskSuccess {
		total += n
	}
	if total == 0 {
		return s.SuccessRate()
	}
	return float64(s.TaskSuccess[t]) / float64(total)
}

// SelectionRecord is one appended row of the selection log.
type SelectionRecord struct {
	ID                      string // ULID, sortable by time
	UserID                  string
	SelectedModel           string
	SuggestedModel          string
	TaskType                TaskType
	Confidence              float64
	UserPreferenceRespected bool
	CreatedAt               time.Time
}

// ModelFeedback is a user's rating of one model response.
type ModelFeedback struct {
	ID        string
	ModelID   string
	Rating    int // 1..5
	TaskType  TaskType
	Comment   string
	CreatedAt time.Time
}
