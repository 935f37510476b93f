package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
)

func pagination(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return offset, limit
}

type generateCodeRequest struct {
	Notes     string     `json:"notes,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type activationCodeResponse struct {
	ID               string     `json:"id"`
	Code             string     `json:"code"`
	Active           bool       `json:"active"`
	Claimed          bool       `json:"claimed"`
	ClaimedByUserID  *string    `json:"claimed_by_user_id,omitempty"`
	ClaimedAt        *time.Time `json:"claimed_at,omitempty"`
	CreatedByAdminID string     `json:"created_by_admin_id"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

func toCodeResponse(c *model.ActivationCode) activationCodeResponse {
	return activationCodeResponse{
		ID:               c.ID,
		Code:             c.Code,
		Active:           c.Active,
		Claimed:          c.Claimed,
		ClaimedByUserID:  c.ClaimedByUserID,
		ClaimedAt:        c.ClaimedAt,
		CreatedByAdminID: c.CreatedByAdminID,
		Notes:            c.Notes,
		CreatedAt:        c.CreatedAt,
		ExpiresAt:        c.ExpiresAt,
	}
}

func (s *Server) handleGenerateCode(w http.ResponseWriter, r *http.Request) {
	admin, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	var req generateCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	code, err := s.accessUC.GenerateCode(r.Context(), admin.ID, req.Notes, req.ExpiresAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCodeResponse(code))
}

func (s *Server) handleListCodes(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	codes, total, err := s.accessUC.ListCodes(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]activationCodeResponse, 0, len(codes))
	for _, c := range codes {
		items = append(items, toCodeResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
	})
}

func (s *Server) handleSuspendCode(w http.ResponseWriter, r *http.Request) {
	if err := s.accessUC.SuspendCode(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "suspended"})
}

func (s *Server) handleReactivateCode(w http.ResponseWriter, r *http.Request) {
	if err := s.accessUC.ReactivateCode(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

func (s *Server) handleDeleteCode(w http.ResponseWriter, r *http.Request) {
	if err := s.accessUC.DeleteCode(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	IsAdmin     bool      `json:"is_admin"`
	HasAIAccess bool      `json:"has_ai_access"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	users, total, err := s.userUC.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, userResponse{
			ID:          u.ID,
			Email:       u.Email,
			IsAdmin:     u.IsAdmin,
			HasAIAccess: u.HasAIAccess,
			CreatedAt:   u.CreatedAt,
			LastSeenAt:  u.LastSeenAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
	})
}

func (s *Server) handleBlockUser(w http.ResponseWriter, r *http.Request) {
	if err := s.accessUC.BlockUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "blocked"})
}

func (s *Server) handleUnblockUser(w http.ResponseWriter, r *http.Request) {
	if err := s.accessUC.UnblockUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unblocked"})
}

func (s *Server) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	if err := s.accessUC.RevokeAccess(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.statsUC.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
