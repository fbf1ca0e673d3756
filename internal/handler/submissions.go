package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"formzen/internal/config"
	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/services"
	"formzen/internal/httputil"
)

// multipartMemory is held in memory before parts spill to temp files
const multipartMemory = 8 << 20

// SubmissionHandler handles respondent submissions
type SubmissionHandler struct {
	submissions services.SubmissionService
	logger      *slog.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissions services.SubmissionService, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		logger:      logger,
	}
}

// Submit records one response to a published form
// POST /api/forms/{id}/submissions
// Accepts multipart/form-data (with files) or application/x-www-form-urlencoded.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := parseFormID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)

	values, files, err := readSubmission(r)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		var invalid *domain.ValidationError
		switch {
		case errors.As(err, &tooLarge):
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "Submission is too large")
		case errors.As(err, &invalid):
			handleError(w, err)
		default:
			h.logger.Debug("unreadable submission body", "error", err)
			httputil.RespondError(w, http.StatusBadRequest, "Invalid submission body")
		}
		return
	}

	submission, err := h.submissions.Submit(r.Context(), id, values, files)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondRedirect(w, http.StatusCreated, "/forms", "Form submitted successfully!", submission)
}

// readSubmission splits the body into text values and file attachments
func readSubmission(r *http.Request) (map[string][]string, map[string]models.Attachment, error) {
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return nil, nil, err
		}
		return r.PostForm, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	files := make(map[string]models.Attachment, len(r.MultipartForm.File))
	extra := map[string]string{}
	for key, headers := range r.MultipartForm.File {
		switch len(headers) {
		case 0:
			continue
		case 1:
			files[key] = attachment(headers[0])
		default:
			extra[key] = "only one file can be attached"
		}
	}
	if len(extra) > 0 {
		return nil, nil, &domain.ValidationError{Message: "Please correct the highlighted fields", Fields: extra}
	}

	return r.MultipartForm.Value, files, nil
}

func attachment(fh *multipart.FileHeader) models.Attachment {
	return models.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
