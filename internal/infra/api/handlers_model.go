package api

import (
	"net/http"

	"ai-access-platform/internal/domain"
)

type suggestRequest struct {
	Prompt         string `json:"prompt"`
	UserPreference string `json:"user_preference,omitempty"`
	LockPreference bool   `json:"lock_preference,omitempty"`
}

type rankedModelResponse struct {
	ModelID         string  `json:"model_id"`
	SuccessRate     float64 `json:"success_rate"`
	TaskSuccessRate float64 `json:"task_success_rate"`
	TotalRequests   int64   `json:"total_requests"`
}

type suggestResponse struct {
	ModelID                 string                `json:"model_id"`
	Reason                  string                `json:"reason"`
	Confidence              float64               `json:"confidence"`
	TaskType                string                `json:"task_type"`
	SuggestedModel          string                `json:"suggested_model,omitempty"`
	UserPreferenceRespected bool                  `json:"user_preference_respected"`
	RankedModels            []rankedModelResponse `json:"ranked_models"`
}

func (s *Server) handleSuggestModel(w http.ResponseWriter, r *http.Request) {
	usr, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	var req suggestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	sel, err := s.routerUC.Suggest(r.Context(), usr.ID, req.Prompt, req.UserPreference, req.LockPreference)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := suggestResponse{
		ModelID:                 sel.ModelID,
		Reason:                  sel.Reason,
		Confidence:              sel.Confidence,
		TaskType:                string(sel.TaskType),
		SuggestedModel:          sel.SuggestedModel,
		UserPreferenceRespected: sel.UserPreferenceRespected,
		RankedModels:            make([]rankedModelResponse, 0, len(sel.RankedModels)),
	}
	for _, rm := range sel.RankedModels {
		resp.RankedModels = append(resp.RankedModels, rankedModelResponse{
			ModelID:         rm.ModelID,
			SuccessRate:     rm.SuccessRate,
			TaskSuccessRate: rm.TaskSuccessRate,
			TotalRequests:   rm.TotalRequests,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type feedbackRequest struct {
	ModelID  string `json:"model_id"`
	Rating   int    `json:"rating"`
	TaskType string `json:"task_type,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

func (s *Server) handleModelFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if err := s.routerUC.RecordFeedback(r.Context(), req.ModelID, req.Rating, req.TaskType, req.Comment); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

type catalogModel struct {
	Name          string `json:"name"`
	ContextWindow int    `json:"context_window"`
}

// handleListModels returns the active model catalog that the frontend
// renders as the selection dropdown.
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	priced, err := s.pricingUC.ListActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]catalogModel, 0, len(priced))
	for _, p := range priced {
		items = append(items, catalogModel{Name: p.ModelName, ContextWindow: p.ContextWindow})
	}
	if len(items) == 0 {
		for _, name := range s.cfg.AI.Models {
			items = append(items, catalogModel{Name: name})
		}
	}
	writeJSON(w, http.StatusOK, map[string][]catalogModel{"items": items})
}
