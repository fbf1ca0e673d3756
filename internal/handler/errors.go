package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"formzen/internal/domain"
	"formzen/internal/httputil"
)

// handleError converts domain errors to structured failure results.
// Upstream and generation failures get a generic retry message; their
// details only reach the server log.
func handleError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		configErr     *domain.ConfigurationError
		uploadErr     *domain.UploadError
		quotaErr      *domain.QuotaExceededError
	)

	switch {
	case errors.As(err, &validationErr):
		extras := map[string]interface{}{}
		if len(validationErr.Fields) > 0 {
			extras["field_errors"] = validationErr.Fields
		}
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, validationErr.Message, extras)
	case errors.As(err, &quotaErr):
		httputil.RespondErrorWithExtras(w, http.StatusPaymentRequired,
			"You have reached the free form limit. Upgrade to keep generating forms.",
			map[string]interface{}{"limit": quotaErr.Limit, "used": quotaErr.Used, "redirect": "/pricing"},
		)
	case errors.As(err, &configErr):
		slog.Warn("feature not configured", "setting", configErr.Setting)
		httputil.RespondError(w, http.StatusServiceUnavailable, configErr.Error())
	case errors.As(err, &uploadErr):
		slog.Error("upload failed", "field", uploadErr.Field, "error", uploadErr.Err)
		httputil.RespondErrorWithExtras(w, http.StatusBadGateway,
			"Failed to upload file. Please try again.",
			map[string]interface{}{"field_errors": map[string]string{uploadErr.Field: "upload failed"}},
		)
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrShape):
		slog.Error("generation produced an invalid form", "error", err)
		httputil.RespondError(w, http.StatusBadGateway, "Failed to generate a valid form. Please try again.")
	case errors.Is(err, domain.ErrUpstream):
		slog.Error("upstream failure", "error", err)
		httputil.RespondError(w, http.StatusBadGateway, "The service is temporarily unavailable. Please try again.")
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotPublished):
		httputil.RespondError(w, http.StatusConflict, "This form is not published")
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		slog.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
