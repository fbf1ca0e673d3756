package httputil

import (
	"context"
	"net/http"

	"formzen/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	userKey          contextKey = "user"
	anonymousUserKey contextKey = "anonymousUser"
)

// WithUser adds the resolved caller identity to the request context
func WithUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), userKey, user)
	return r.WithContext(ctx)
}

// GetUser retrieves the caller identity, nil when the request has none
func GetUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}

// WithAnonymousUser records the identity behind the anonymous session cookie.
// It is kept separately so the account-link route can see both identities.
func WithAnonymousUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), anonymousUserKey, user)
	return r.WithContext(ctx)
}

// GetAnonymousUser retrieves the anonymous cookie identity, nil if absent
func GetAnonymousUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(anonymousUserKey).(*models.User)
	return user
}

// GetUserID returns the caller's id, empty string if not found
func GetUserID(r *http.Request) string {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return ""
}
