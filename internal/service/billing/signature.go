package billing

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"formzen/internal/domain/services"

	svix "github.com/svix/svix-webhooks/go"
)

var errMissingHeaders = errors.New("missing webhook signature headers")

// Verifier checks Standard Webhooks signatures (webhook-id,
// webhook-timestamp, webhook-signature).
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier builds a verifier from the provider secret. A "whsec_" prefix
// marks a base64-encoded key; any other secret is used as raw bytes.
func NewVerifier(secret string) (*Verifier, error) {
	var (
		wh  *svix.Webhook
		err error
	)
	if strings.HasPrefix(secret, "whsec_") {
		wh, err = svix.NewWebhook(secret)
	} else {
		wh, err = svix.NewWebhookRaw([]byte(secret))
	}
	if err != nil {
		return nil, fmt.Errorf("webhook secret: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Sign computes the v1 signature for a delivery
func (v *Verifier) Sign(id string, at time.Time, body []byte) (string, error) {
	return v.wh.Sign(id, at, body)
}

// Verify checks headers against body, including the timestamp tolerance
func (v *Verifier) Verify(headers services.WebhookHeaders, body []byte) error {
	if headers.ID == "" || headers.Timestamp == "" || headers.Signature == "" {
		return errMissingHeaders
	}

	h := http.Header{}
	h.Set("webhook-id", headers.ID)
	h.Set("webhook-timestamp", headers.Timestamp)
	h.Set("webhook-signature", headers.Signature)

	return v.wh.Verify(body, h)
}
