//go:build !integration

package model

import "testing"

func TestModelStats_Rates(t *testing.T) {
	t.Run("new model gets the 0.5 prior", func(t *testing.T) {
		st := NewModelStats("fresh")
		if got := st.SuccessRate(); got != 0.5 {
			t.Errorf("Expected 0.5 prior, got %v", got)
		}
		if got := st.TaskSuccessRate(TaskCode); got != 0.5 {
			t.Errorf("Expected 0.5 prior for unseen task, got %v", got)
		}
	})

	t.Run("unseen task falls back to the overall rate", func(t *testing.T) {
		st := NewModelStats("generalist")
		st.Requests = 10
		st.Successes = 9
		st.TaskSuccess[TaskMath] = 9

		if got := st.TaskSuccessRate(TaskCode); got != 0.9 {
			t.Errorf("Expected overall rate 0.9 for a task without data, got %v", got)
		}
		if got := st.TaskSuccessRate(TaskMath); got != 1.0 {
			t.Errorf("Expected per-task rate 1.0, got %v", got)
		}
	})

	t.Run("seen task divides by the task total", func(t *testing.T) {
		st := NewModelStats("split")
		st.Requests = 20
		st.Successes = 10
		st.TaskSuccess[TaskCode] = 6
		st.TaskSuccess[TaskMath] = 2

		if got := st.TaskSuccessRate(TaskCode); got != 0.75 {
			t.Errorf("Expected 6/8 = 0.75, got %v", got)
		}
	})
}
