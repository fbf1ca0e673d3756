package services

import (
	"context"

	"formzen/internal/domain/models"
)

// EntitlementChange is a billing event reduced to what it means for a user
type EntitlementChange struct {
	EventType string
	UserID    string
	ProductID string
	Tier      models.Tier
}

// BillingService applies provider webhooks to identities
type BillingService interface {
	// HandleWebhook verifies and applies one delivery. Unhandled event types
	// return (nil, nil).
	HandleWebhook(ctx context.Context, headers WebhookHeaders, body []byte) (*EntitlementChange, error)

	// ApplyEntitlement writes the tier of a decoded event (idempotent)
	ApplyEntitlement(ctx context.Context, change *EntitlementChange) error
}

// WebhookHeaders are the Standard Webhooks signature headers
type WebhookHeaders struct {
	ID        string
	Timestamp string
	Signature string
}
