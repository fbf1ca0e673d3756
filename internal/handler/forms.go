package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"formzen/internal/auth"
	"formzen/internal/domain/models"
	"formzen/internal/domain/services"
	"formzen/internal/httputil"
)

// FormHandler handles form HTTP requests
type FormHandler struct {
	forms         services.FormService
	generation    services.GenerationService
	gate          services.AccessGate
	publicBaseURL string
	sessionTTL    time.Duration
	secureCookies bool
	logger        *slog.Logger
}

// NewFormHandler creates a new form handler
func NewFormHandler(
	forms services.FormService,
	generation services.GenerationService,
	gate services.AccessGate,
	publicBaseURL string,
	sessionTTL time.Duration,
	secureCookies bool,
	logger *slog.Logger,
) *FormHandler {
	return &FormHandler{
		forms:         forms,
		generation:    generation,
		gate:          gate,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// FormView is the owner's view of a form, with its share link once published
type FormView struct {
	*models.Form
	Title    string `json:"title"`
	Status   string `json:"status"`
	ShareURL string `json:"share_url,omitempty"`
}

func (h *FormHandler) view(form *models.Form) *FormView {
	v := &FormView{Form: form, Title: form.Title(), Status: form.Status()}
	if form.Published && form.ShareToken != nil {
		v.ShareURL = h.publicBaseURL + "/share/" + *form.ShareToken
	}
	return v
}

// Generate turns a description into a draft form
// POST /api/forms/generate
// Callers without an identity get an anonymous session first.
func (h *FormHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateFormRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// no anonymous identity is minted for a request that cannot succeed
	if err := h.generation.Validate(&req); err != nil {
		handleError(w, err)
		return
	}

	user, token, err := h.gate.EnsureIdentity(r.Context(), httputil.GetUser(r))
	if err != nil {
		handleError(w, err)
		return
	}
	if token != "" {
		http.SetCookie(w, auth.SessionCookie(token, h.sessionTTL, h.secureCookies))
	}

	form, err := h.generation.Generate(r.Context(), user, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondRedirect(w, http.StatusCreated, fmt.Sprintf("/forms/%d/edit", form.ID),
		"Form generated successfully!", h.view(form))
}

// ListForms returns the caller's forms
// GET /api/forms
func (h *FormHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	forms, err := h.forms.List(r.Context(), user)
	if err != nil {
		handleError(w, err)
		return
	}

	views := make([]*FormView, 0, len(forms))
	for i := range forms {
		views = append(views, h.view(&forms[i]))
	}

	httputil.RespondJSON(w, http.StatusOK, views)
}

// Dashboard returns drafts, published forms and recent submissions
// GET /api/dashboard
func (h *FormHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	dashboard, err := h.forms.Dashboard(r.Context(), user)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, dashboard)
}

// GetForm returns a form for its owner's edit view
// GET /api/forms/{id}
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseFormID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	form, err := h.forms.GetForOwner(r.Context(), id, httputil.GetUser(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, h.view(form))
}

// PublishForm publishes a draft
// POST /api/forms/{id}/publish
func (h *FormHandler) PublishForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseFormID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	user := httputil.GetUser(r)
	if err := h.gate.CheckPublish(r.Context(), user); err != nil {
		handleError(w, err)
		return
	}

	form, err := h.forms.Publish(r.Context(), id, user)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondSuccess(w, http.StatusOK, "Form published successfully!", h.view(form))
}

// GetPublicForm returns a published form to respondents
// GET /api/forms/{id}/public
func (h *FormHandler) GetPublicForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseFormID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	form, err := h.forms.GetPublic(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, form.Public())
}

// GetSharedForm resolves a share link
// GET /api/share/{token}
func (h *FormHandler) GetSharedForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.forms.GetByShareToken(r.Context(), r.PathValue("token"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, form.Public())
}

// ListSubmissions returns a page of a form's submissions to its owner
// GET /api/forms/{id}/submissions?limit=&offset=
func (h *FormHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	id, err := parseFormID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	submissions, err := h.forms.ListSubmissions(r.Context(), httputil.GetUser(r), &services.ListSubmissionsRequest{
		FormID: id,
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, submissions)
}
