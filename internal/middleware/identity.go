package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"formzen/internal/auth"
	"formzen/internal/domain"
	"formzen/internal/domain/services"
	"formzen/internal/httputil"
)

// Identity resolves the caller before any handler runs.
//
// A bearer token must be a valid provider session; an invalid one is
// rejected with 401. The anonymous session cookie is resolved independently
// and becomes the caller when no bearer token was sent. Requests with neither
// continue with no identity; handlers decide whether that is allowed.
func Identity(verifier auth.JWTVerifier, sessions auth.AnonymousSessions, gate services.AccessGate, secureCookies bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
				claims, err := sessions.VerifyAnonymous(cookie.Value)
				if err != nil {
					logger.Debug("discarding invalid anonymous session", "error", err)
					http.SetCookie(w, auth.ClearSessionCookie(secureCookies))
				} else {
					anon, err := gate.ResolveAnonymous(ctx, claims.Subject)
					switch {
					case err == nil:
						r = httputil.WithAnonymousUser(r, anon)
					case errors.Is(err, domain.ErrNotFound):
						// merged or removed identity
						http.SetCookie(w, auth.ClearSessionCookie(secureCookies))
					default:
						logger.Error("resolve anonymous identity", "error", err)
						httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
						return
					}
				}
			}

			token, hasBearer := bearerToken(r)
			if !hasBearer {
				if anon := httputil.GetAnonymousUser(r); anon != nil {
					r = httputil.WithUser(r, anon)
				}
				next.ServeHTTP(w, r)
				return
			}

			if verifier == nil {
				httputil.RespondError(w, http.StatusServiceUnavailable, "sign-in is not configured")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			user, err := gate.ResolveNamed(ctx, claims)
			if err != nil {
				logger.Error("resolve named identity", "error", err, "user_id", claims.Subject)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, httputil.WithUser(r, user))
		})
	}
}

// bearerToken extracts "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
