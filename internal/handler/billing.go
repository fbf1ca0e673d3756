package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"formzen/internal/domain/services"
	"formzen/internal/httputil"
)

// maxWebhookBody caps billing webhook payloads
const maxWebhookBody = 1 << 20

// BillingHandler receives billing provider webhooks
type BillingHandler struct {
	billing services.BillingService
	logger  *slog.Logger
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billing services.BillingService, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		billing: billing,
		logger:  logger,
	}
}

// WebhookResponse acknowledges a delivery
type WebhookResponse struct {
	Received bool   `json:"received"`
	Event    string `json:"event,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Tier     string `json:"tier,omitempty"`
}

// Webhook verifies and applies one billing event
// POST /api/webhooks/billing
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	change, err := h.billing.HandleWebhook(r.Context(), services.WebhookHeaders{
		ID:        r.Header.Get("webhook-id"),
		Timestamp: r.Header.Get("webhook-timestamp"),
		Signature: r.Header.Get("webhook-signature"),
	}, body)
	if err != nil {
		handleError(w, err)
		return
	}

	if change == nil {
		httputil.RespondJSON(w, http.StatusOK, WebhookResponse{Received: true})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, WebhookResponse{
		Received: true,
		Event:    change.EventType,
		UserID:   change.UserID,
		Tier:     string(change.Tier),
	})
}
