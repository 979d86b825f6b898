package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

type ProposalHandler struct {
	proposals ports.ProposalService
	votes     ports.VoteLedger
	logger    *slog.Logger
}

func NewProposalHandler(proposals ports.ProposalService, votes ports.VoteLedger, logger *slog.Logger) *ProposalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProposalHandler{proposals: proposals, votes: votes, logger: logger.With("module", "http/proposals")}
}

type tallyResponse struct {
	domain.Tally
	Total         int64   `json:"total"`
	YesPercentage float64 `json:"yesPercentage"`
	NoPercentage  float64 `json:"noPercentage"`
}

func newTallyResponse(t domain.Tally) tallyResponse {
	return tallyResponse{
		Tally:         t,
		Total:         t.Total(),
		YesPercentage: t.YesPercentage(),
		NoPercentage:  t.NoPercentage(),
	}
}

func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.proposals.ListProposals(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *ProposalHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.proposals.GetProposal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Tally counts the proposal's effective votes. The proposal is looked up first
// so unknown ids yield 404 rather than an empty tally.
func (h *ProposalHandler) Tally(w http.ResponseWriter, r *http.Request) {
	summary, err := h.proposals.GetProposal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newTallyResponse(summary.VoteCount))
}
