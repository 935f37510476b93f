package api

import (
	"net/http"

	"ai-access-platform/internal/domain"
)

func (s *Server) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	usr, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	st, err := s.accessUC.Check(r.Context(), usr.ID, usr.IsAdmin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccessStatusResponse(st))
}

type activateRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	usr, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	var req activateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	st, err := s.accessUC.Redeem(r.Context(), usr.ID, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccessStatusResponse(st))
}
