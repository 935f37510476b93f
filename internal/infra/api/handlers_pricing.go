package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
)

type pricingRequest struct {
	ModelName              string `json:"model_name"`
	InputTokenPriceMicros  int64  `json:"input_token_price_micros"`
	OutputTokenPriceMicros int64  `json:"output_token_price_micros"`
	ContextWindow          int    `json:"context_window"`
}

type pricingResponse struct {
	ID                     string    `json:"id"`
	ModelName              string    `json:"model_name"`
	InputTokenPriceMicros  int64     `json:"input_token_price_micros"`
	OutputTokenPriceMicros int64     `json:"output_token_price_micros"`
	ContextWindow          int       `json:"context_window"`
	Active                 bool      `json:"active"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func toPricingResponse(p *model.ModelPricing) pricingResponse {
	return pricingResponse{
		ID:                     p.ID,
		ModelName:              p.ModelName,
		InputTokenPriceMicros:  p.InputTokenPriceMicros,
		OutputTokenPriceMicros: p.OutputTokenPriceMicros,
		ContextWindow:          p.ContextWindow,
		Active:                 p.Active,
		UpdatedAt:              p.UpdatedAt,
	}
}

func (s *Server) handleListPricing(w http.ResponseWriter, r *http.Request) {
	priced, err := s.pricingUC.ListActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]pricingResponse, 0, len(priced))
	for _, p := range priced {
		items = append(items, toPricingResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string][]pricingResponse{"items": items})
}

func (s *Server) handleCreatePricing(w http.ResponseWriter, r *http.Request) {
	var req pricingRequest
	if err := decodeJSON(r, &req); err != nil || req.ModelName == "" {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	p := model.NewModelPricing(req.ModelName, req.InputTokenPriceMicros, req.OutputTokenPriceMicros, req.ContextWindow)
	if err := s.pricingUC.Create(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPricingResponse(p))
}

func (s *Server) handleUpdatePricing(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "model")
	existing, err := s.pricingUC.GetByModelName(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	var req pricingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	existing.InputTokenPriceMicros = req.InputTokenPriceMicros
	existing.OutputTokenPriceMicros = req.OutputTokenPriceMicros
	if req.ContextWindow > 0 {
		existing.ContextWindow = req.ContextWindow
	}
	existing.UpdatedAt = time.Now()
	if err := s.pricingUC.Update(r.Context(), existing); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPricingResponse(existing))
}

func (s *Server) handleDeletePricing(w http.ResponseWriter, r *http.Request) {
	if err := s.pricingUC.Deactivate(r.Context(), chi.URLParam(r, "model")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
