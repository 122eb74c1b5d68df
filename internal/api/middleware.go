package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"farmacia/m/domain"
	"farmacia/m/internal/auth"
)

type ctxKey string

const ctxClaims ctxKey = "claims"

// authenticate verifies the bearer token. A missing or malformed header
// is 403; a token that fails verification is 401.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusForbidden, "No se proporcionó un token.")
			return
		}
		raw := strings.TrimSpace(header[len("Bearer "):])
		if raw == "" {
			respondError(w, http.StatusForbidden, "No se proporcionó un token.")
			return
		}
		claims, err := h.Tokens.ParseSession(raw)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				respondError(w, http.StatusUnauthorized, "Token expirado.")
				return
			}
			respondError(w, http.StatusUnauthorized, "Token inválido.")
			return
		}
		ctx := context.WithValue(r.Context(), ctxClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.Authorize(claimsFrom(r.Context()), allowed...); err != nil {
				respondError(w, http.StatusForbidden, "Acceso denegado.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tokenFromQuery lets browser websocket clients, which cannot set
// headers, pass the session token as ?token=.
func tokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if token := r.URL.Query().Get("token"); token != "" {
				r.Header.Set("Authorization", "Bearer "+token)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFrom(ctx context.Context) *auth.SessionClaims {
	claims, _ := ctx.Value(ctxClaims).(*auth.SessionClaims)
	return claims
}

// ownsClient writes 403 and returns false when the caller may not act
// for clientID.
func ownsClient(w http.ResponseWriter, r *http.Request, clientID int64) bool {
	if err := auth.CanActForClient(claimsFrom(r.Context()), clientID); err != nil {
		respondError(w, http.StatusForbidden, "Acceso denegado.")
		return false
	}
	return true
}

// accessLog is chi's request logger with the token query value masked, so
// websocket sessions opened with ?token= never reach the log.
var accessLog = middleware.RequestLogger(redactingFormatter{
	LogFormatter: &middleware.DefaultLogFormatter{Logger: log.New(os.Stdout, "", log.LstdFlags)},
})

type redactingFormatter struct {
	middleware.LogFormatter
}

func (f redactingFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	if q := r.URL.Query(); q.Has("token") {
		q.Set("token", "REDACTED")
		r = r.Clone(r.Context())
		r.URL.RawQuery = q.Encode()
		r.RequestURI = r.URL.RequestURI()
	}
	return f.LogFormatter.NewLogEntry(r)
}
