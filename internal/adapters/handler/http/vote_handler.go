package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

type VoteHandler struct {
	guard  ports.EligibilityGuard
	logger *slog.Logger
}

func NewVoteHandler(guard ports.EligibilityGuard, logger *slog.Logger) *VoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoteHandler{guard: guard, logger: logger.With("module", "http/votes")}
}

type voteRequest struct {
	Vote domain.VoteChoice `json:"vote"`
}

type voteResponse struct {
	ContentID string `json:"contentId"`
}

func (h *VoteHandler) VoteOnProposal(w http.ResponseWriter, r *http.Request) {
	address, ok := sessionAddress(r)
	if !ok {
		http.Error(w, "Unauthorized: missing address context", http.StatusUnauthorized)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.VoteInput{
		Address:    address,
		ProposalID: chi.URLParam(r, "id"),
		Vote:       req.Vote,
	}

	id, err := h.guard.CastVote(r.Context(), input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, voteResponse{ContentID: id})
}

func (h *VoteHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	address, ok := sessionAddress(r)
	if !ok {
		http.Error(w, "Unauthorized: missing address context", http.StatusUnauthorized)
		return
	}

	vote, err := h.guard.MyVote(r.Context(), address, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if vote == nil {
		http.Error(w, "vote not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, vote)
}

func (h *VoteHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	address, ok := sessionAddress(r)
	if !ok {
		http.Error(w, "Unauthorized: missing address context", http.StatusUnauthorized)
		return
	}

	eligibility, err := h.guard.CanVote(r.Context(), address, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibility)
}
