package billing

import (
	"context"
	"errors"
	"log/slog"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
	"formzen/internal/domain/services"
	"formzen/internal/metrics"
	"formzen/internal/plans"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/tidwall/gjson"
)

// Billing provider event types
const (
	EventOrderPaid            = "order.paid"
	EventSubscriptionCreated  = "subscription.created"
	EventSubscriptionUpdated  = "subscription.updated"
	EventSubscriptionCanceled = "subscription.canceled"
	EventSubscriptionRevoked  = "subscription.revoked"
	EventSubscriptionActive   = "subscription.active"
	EventCustomerStateChanged = "customer.state_changed"
)

// Payload locations of the target identity, in priority order. Deliveries
// differ in where they carry it.
var userIDPaths = []string{
	"userId",
	"user_id",
	"data.user_id",
	"data.userId",
	"data.metadata.userId",
	"data.metadata.user_id",
	"data.customer.external_id",
}

var productIDPaths = []string{
	"data.product_id",
	"productId",
	"data.product.id",
}

// billingService implements the BillingService interface
type billingService struct {
	userRepo repositories.UserRepository
	plans    *plans.Registry
	verifier *Verifier
	logger   *slog.Logger
}

// NewBillingService creates the webhook processor. verifier may be nil when
// no secret is configured; deliveries are then rejected.
func NewBillingService(
	userRepo repositories.UserRepository,
	registry *plans.Registry,
	verifier *Verifier,
	logger *slog.Logger,
) services.BillingService {
	return &billingService{
		userRepo: userRepo,
		plans:    registry,
		verifier: verifier,
		logger:   logger,
	}
}

// HandleWebhook verifies, decodes and applies one delivery
func (s *billingService) HandleWebhook(ctx context.Context, headers services.WebhookHeaders, body []byte) (*services.EntitlementChange, error) {
	if s.verifier == nil {
		return nil, &domain.ConfigurationError{Setting: "BILLING_WEBHOOK_SECRET"}
	}
	if err := s.verifier.Verify(headers, body); err != nil {
		metrics.WebhooksTotal.WithLabelValues("unknown", "rejected").Inc()
		s.logger.Warn("webhook signature rejected", "webhook_id", headers.ID, "error", err)
		return nil, &domain.UnauthorizedError{Message: "invalid webhook signature"}
	}

	if !gjson.ValidBytes(body) {
		metrics.WebhooksTotal.WithLabelValues("unknown", "invalid").Inc()
		return nil, &domain.ValidationError{Message: "webhook body is not valid JSON"}
	}

	change, err := s.Decode(body)
	if err != nil {
		metrics.WebhooksTotal.WithLabelValues(change.EventType, "invalid").Inc()
		return nil, err
	}

	if !changesEntitlement(change.EventType) {
		metrics.WebhooksTotal.WithLabelValues(change.EventType, "ignored").Inc()
		s.logger.Debug("webhook acknowledged", "event", change.EventType, "webhook_id", headers.ID)
		return nil, nil
	}

	if err := s.ApplyEntitlement(ctx, change); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// retrying cannot help; acknowledge so the provider stops redelivering
			metrics.WebhooksTotal.WithLabelValues(change.EventType, "unknown_user").Inc()
			s.logger.Warn("webhook for unknown user", "event", change.EventType, "user_id", change.UserID)
			return nil, nil
		}
		metrics.WebhooksTotal.WithLabelValues(change.EventType, "error").Inc()
		return nil, err
	}

	metrics.WebhooksTotal.WithLabelValues(change.EventType, "applied").Inc()
	return change, nil
}

// Decode extracts the event type, target identity and product from a
// payload and maps them to a tier. The returned change is never nil.
func (s *billingService) Decode(body []byte) (*services.EntitlementChange, error) {
	doc := gjson.ParseBytes(body)
	change := &services.EntitlementChange{
		EventType: doc.Get("type").String(),
		UserID:    firstString(doc, userIDPaths),
		ProductID: firstString(doc, productIDPaths),
	}
	if change.EventType == "" {
		change.EventType = "unknown"
		return change, &domain.ValidationError{Message: "webhook has no event type"}
	}

	switch change.EventType {
	case EventOrderPaid, EventSubscriptionCreated, EventSubscriptionUpdated:
		change.Tier = s.plans.TierForProduct(change.ProductID)
	case EventSubscriptionCanceled, EventSubscriptionRevoked:
		change.Tier = models.TierFree
	}

	return change, nil
}

// ApplyEntitlement writes the tier of a decoded event. Repeated deliveries
// write the same value.
func (s *billingService) ApplyEntitlement(ctx context.Context, change *services.EntitlementChange) error {
	err := validation.ValidateStruct(change,
		validation.Field(&change.UserID, validation.Required.Error("no user id in payload")),
		validation.Field(&change.Tier,
			validation.Required,
			validation.In(models.TierFree, models.TierPro, models.TierEnterprise),
		),
	)
	if err != nil {
		s.logger.Error("webhook payload rejected", "event", change.EventType, "error", err)
		return domain.NewValidationError("Invalid billing event", err)
	}

	if err := s.userRepo.SetSubscription(ctx, change.UserID, change.Tier); err != nil {
		return err
	}

	s.logger.Info("subscription updated",
		"event", change.EventType,
		"user_id", change.UserID,
		"product_id", change.ProductID,
		"tier", change.Tier,
	)

	return nil
}

func changesEntitlement(eventType string) bool {
	switch eventType {
	case EventOrderPaid, EventSubscriptionCreated, EventSubscriptionUpdated,
		EventSubscriptionCanceled, EventSubscriptionRevoked:
		return true
	default:
		return false
	}
}

func firstString(doc gjson.Result, paths []string) string {
	for _, p := range paths {
		if v := doc.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
