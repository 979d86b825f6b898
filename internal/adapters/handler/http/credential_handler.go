package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

type CredentialHandler struct {
	registry ports.CredentialRegistry
	logger   *slog.Logger
}

func NewCredentialHandler(registry ports.CredentialRegistry, logger *slog.Logger) *CredentialHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialHandler{registry: registry, logger: logger.With("module", "http/credentials")}
}

type verifyResponse struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
}

// Issue grants a credential to the session's address.
func (h *CredentialHandler) Issue(w http.ResponseWriter, r *http.Request) {
	address, ok := sessionAddress(r)
	if !ok {
		http.Error(w, "Unauthorized: missing address context", http.StatusUnauthorized)
		return
	}

	credential, err := h.registry.Issue(r.Context(), address)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, credential)
}

// RevokeMine revokes the session's own credential.
func (h *CredentialHandler) RevokeMine(w http.ResponseWriter, r *http.Request) {
	address, ok := sessionAddress(r)
	if !ok {
		http.Error(w, "Unauthorized: missing address context", http.StatusUnauthorized)
		return
	}

	revoked, err := h.registry.Revoke(r.Context(), address)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, revoked)
}

func (h *CredentialHandler) List(w http.ResponseWriter, r *http.Request) {
	credentials, err := h.registry.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, credentials)
}

func (h *CredentialHandler) Get(w http.ResponseWriter, r *http.Request) {
	credential, err := h.registry.Resolve(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if credential == nil {
		http.Error(w, "credential not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, credential)
}

func (h *CredentialHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.registry.History(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *CredentialHandler) Verify(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	verified, err := h.registry.Verify(r.Context(), address)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Address: address, Verified: verified})
}
