package handler

import (
	"net/http"
	"strconv"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/httputil"
)

// parseFormID reads the {id} path value
func parseFormID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Message: "Form ID not provided"}
	}
	return id, nil
}

// queryInt reads an optional integer query parameter
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

// requireUser returns the caller or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := httputil.GetUser(r)
	if user == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "Sign in or start a session first")
		return nil, false
	}
	return user, true
}
