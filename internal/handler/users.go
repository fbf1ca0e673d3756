package handler

import (
	"log/slog"
	"net/http"
	"time"

	"formzen/internal/auth"
	"formzen/internal/domain/models"
	"formzen/internal/domain/services"
	"formzen/internal/httputil"
)

// UserHandler handles identity and profile HTTP requests
type UserHandler struct {
	gate          services.AccessGate
	identity      services.IdentityService
	sessionTTL    time.Duration
	secureCookies bool
	logger        *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	gate services.AccessGate,
	identity services.IdentityService,
	sessionTTL time.Duration,
	secureCookies bool,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		gate:          gate,
		identity:      identity,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// MeResponse is the caller's identity with entitlement and usage
type MeResponse struct {
	User          *models.User  `json:"user"`
	EffectiveTier models.Tier   `json:"effective_tier"`
	Usage         *models.Usage `json:"usage"`
}

// updateProfileBody distinguishes an absent image (keep) from null (clear)
type updateProfileBody struct {
	Name  string                  `json:"name"`
	Image httputil.OptionalString `json:"image"`
}

// EnsureAnonymous materializes an anonymous identity for callers with none
// POST /api/auth/anonymous
func (h *UserHandler) EnsureAnonymous(w http.ResponseWriter, r *http.Request) {
	user, token, err := h.gate.EnsureIdentity(r.Context(), httputil.GetUser(r))
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusOK
	if token != "" {
		http.SetCookie(w, auth.SessionCookie(token, h.sessionTTL, h.secureCookies))
		status = http.StatusCreated
	}

	httputil.RespondJSON(w, status, user)
}

// Link merges the anonymous cookie identity into the signed-in identity
// POST /api/auth/link
func (h *UserHandler) Link(w http.ResponseWriter, r *http.Request) {
	named := httputil.GetUser(r)
	if named == nil || named.IsAnonymous {
		httputil.RespondError(w, http.StatusUnauthorized, "Sign in to link your account")
		return
	}

	anonymous := httputil.GetAnonymousUser(r)
	if anonymous == nil {
		httputil.RespondSuccess(w, http.StatusOK, "Nothing to link", nil)
		return
	}

	result, err := h.identity.MergeIdentities(r.Context(), anonymous, named)
	if err != nil {
		handleError(w, err)
		return
	}

	http.SetCookie(w, auth.ClearSessionCookie(h.secureCookies))
	httputil.RespondSuccess(w, http.StatusOK, "Account linked", result)
}

// Me returns the caller with tier and usage
// GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	usage, err := h.gate.Usage(r.Context(), user)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, MeResponse{
		User:          user,
		EffectiveTier: h.gate.EffectiveTier(user),
		Usage:         usage,
	})
}

// UpdateMe changes the caller's display name and image
// PATCH /api/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body updateProfileBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := &services.UpdateProfileRequest{Name: body.Name, Image: user.Image}
	if body.Image.Present {
		req.Image = body.Image.Value
	}

	updated, err := h.identity.UpdateProfile(r.Context(), user, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondSuccess(w, http.StatusOK, "Profile updated", updated)
}
