package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAddress), errors.Is(err, domain.ErrInvalidVote):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrProposalNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyActive),
		errors.Is(err, domain.ErrCredentialRevoked),
		errors.Is(err, domain.ErrDuplicateVote),
		errors.Is(err, domain.ErrAlreadyVoted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrProposalClosed):
		return http.StatusGone
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "event", "http_request_failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err.Error())
	}
	if status == http.StatusServiceUnavailable {
		http.Error(w, "content store unavailable", status)
		return
	}
	http.Error(w, err.Error(), status)
}
