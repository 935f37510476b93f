package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// accessStatusResponse is the wire shape shared by the check and
// activation endpoints.
type accessStatusResponse struct {
	HasAccess   bool   `json:"has_access"`
	IsSuspended bool   `json:"is_suspended"`
	IsBlocked   bool   `json:"is_blocked"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	Code        string `json:"code"`
}

func toAccessStatusResponse(st *model.AccessStatus) accessStatusResponse {
	return accessStatusResponse{
		HasAccess:   st.HasAccess,
		IsSuspended: st.IsSuspended,
		IsBlocked:   st.IsBlocked,
		Status:      st.Status,
		Message:     st.Message,
		Code:        st.Code,
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := ""
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrAdminRequired):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrAccessDenied), errors.Is(err, domain.ErrAccessSuspended):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrAccessBlocked):
		status = http.StatusForbidden
		code = model.AccessCodeBlocked
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrCodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrCodeAlreadyUsed),
		errors.Is(err, domain.ErrCodeDeactivated),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrCodeClaimed):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		// Do not echo internals to clients.
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

// writeAccessDenied returns 403 with the full status payload so the
// frontend can show the right screen for suspended vs blocked users.
func writeAccessDenied(w http.ResponseWriter, st *model.AccessStatus) {
	writeJSON(w, http.StatusForbidden, toAccessStatusResponse(st))
}
