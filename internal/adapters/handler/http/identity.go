package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

type contextKey string

// AddressKey holds the authenticated wallet address in the request context.
const AddressKey contextKey = "address"

const accessTokenCookie = "access_token"

type SessionMiddleware struct {
	verifier ports.IdentityVerifier
}

func NewSessionMiddleware(verifier ports.IdentityVerifier) *SessionMiddleware {
	return &SessionMiddleware{verifier: verifier}
}

// RequireSession rejects requests without a valid session token, read from the
// access_token cookie or an Authorization bearer header.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			http.Error(w, "Unauthorized: missing session", http.StatusUnauthorized)
			return
		}

		address, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AddressKey, address)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

func sessionAddress(r *http.Request) (string, bool) {
	address, ok := r.Context().Value(AddressKey).(string)
	return address, ok && address != ""
}
