package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

// AuthHandler moves a wallet session token into an HttpOnly cookie. Tokens are
// minted by the wallet layer; this handler only checks them.
type AuthHandler struct {
	verifier       ports.IdentityVerifier
	cookieDomain   string
	cookieSameSite http.SameSite
	cookieMaxAge   time.Duration
}

func NewAuthHandler(verifier ports.IdentityVerifier, cookieDomain string, cookieSameSite http.SameSite) *AuthHandler {
	return &AuthHandler{
		verifier:       verifier,
		cookieDomain:   cookieDomain,
		cookieSameSite: cookieSameSite,
		cookieMaxAge:   15 * time.Minute,
	}
}

type sessionRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	Address string `json:"address"`
}

func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}

	address, err := h.verifier.Verify(r.Context(), req.Token)
	if err != nil {
		h.expireCookie(w)
		http.Error(w, "Authentication failed: "+err.Error(), http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    req.Token,
		Path:     "/",
		Domain:   h.cookieDomain,
		HttpOnly: true,
		Secure:   true,
		SameSite: h.cookieSameSite,
		MaxAge:   int(h.cookieMaxAge.Seconds()),
	})
	writeJSON(w, http.StatusOK, sessionResponse{Address: address})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.expireCookie(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *AuthHandler) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: accessTokenCookie, MaxAge: -1, Path: "/", Domain: h.cookieDomain})
}
