package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth        *AuthHandler
	Credentials *CredentialHandler
	Proposals   *ProposalHandler
	Votes       *VoteHandler
	Session     *SessionMiddleware
}

func NewHandler(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/session", h.Auth.CreateSession)
		r.Post("/logout", h.Auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/credentials", func(r chi.Router) {
			r.Get("/", h.Credentials.List)
			r.With(h.Session.RequireSession).Post("/", h.Credentials.Issue)
			r.With(h.Session.RequireSession).Delete("/me", h.Credentials.RevokeMine)
			r.Get("/{address}", h.Credentials.Get)
			r.Get("/{address}/history", h.Credentials.History)
			r.Get("/{address}/verify", h.Credentials.Verify)
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Get("/", h.Proposals.List)
			r.Get("/{id}", h.Proposals.Get)
			r.Get("/{id}/tally", h.Proposals.Tally)

			r.Group(func(r chi.Router) {
				r.Use(h.Session.RequireSession)
				r.Get("/{id}/eligibility", h.Votes.Eligibility)
				r.Get("/{id}/my-vote", h.Votes.MyVote)
				r.Post("/{id}/votes", h.Votes.VoteOnProposal)
			})
		})
	})

	return r
}
