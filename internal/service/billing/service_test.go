package billing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
	"formzen/internal/domain/services"
	"formzen/internal/plans"
	"formzen/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	proProduct        = "c24ea16e-2ac8-42b4-945c-86ec7df65357"
	enterpriseProduct = "6181ba61-ba3d-473b-9334-c32a9a68438f"
)

type webhookEnv struct {
	users    repositories.UserRepository
	verifier *Verifier
	svc      services.BillingService
}

func newWebhookEnv(t *testing.T, withVerifier bool) *webhookEnv {
	t.Helper()
	registry, err := plans.NewRegistry()
	require.NoError(t, err)

	env := &webhookEnv{users: memory.NewUserRepository(memory.NewStore())}
	if withVerifier {
		env.verifier, err = NewVerifier("test-secret")
		require.NoError(t, err)
	}
	env.svc = NewBillingService(env.users, registry, env.verifier, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, env.users.Create(context.Background(), &models.User{ID: "user-1", Name: "Ada"}))
	return env
}

func (e *webhookEnv) deliver(t *testing.T, body string) (*services.EntitlementChange, error) {
	t.Helper()
	now := time.Now()
	sig, err := e.verifier.Sign("msg_1", now, []byte(body))
	require.NoError(t, err)
	headers := services.WebhookHeaders{
		ID:        "msg_1",
		Timestamp: strconv.FormatInt(now.Unix(), 10),
		Signature: sig,
	}
	return e.svc.HandleWebhook(context.Background(), headers, []byte(body))
}

func (e *webhookEnv) tier(t *testing.T) models.Tier {
	t.Helper()
	u, err := e.users.GetByID(context.Background(), "user-1")
	require.NoError(t, err)
	return u.Subscription
}

func TestHandleWebhook_Entitlements(t *testing.T) {
	tests := []struct {
		name     string
		start    models.Tier
		body     string
		wantTier models.Tier
	}{
		{
			name:     "order paid for pro",
			start:    models.TierFree,
			body:     fmt.Sprintf(`{"type":"order.paid","data":{"product_id":%q,"metadata":{"userId":"user-1"}}}`, proProduct),
			wantTier: models.TierPro,
		},
		{
			name:     "subscription created for enterprise",
			start:    models.TierFree,
			body:     fmt.Sprintf(`{"type":"subscription.created","userId":"user-1","productId":%q}`, enterpriseProduct),
			wantTier: models.TierEnterprise,
		},
		{
			name:     "unknown product resolves to pro",
			start:    models.TierFree,
			body:     `{"type":"subscription.updated","data":{"user_id":"user-1","product":{"id":"something-new"}}}`,
			wantTier: models.TierPro,
		},
		{
			name:     "canceled downgrades",
			start:    models.TierPro,
			body:     `{"type":"subscription.canceled","data":{"customer":{"external_id":"user-1"}}}`,
			wantTier: models.TierFree,
		},
		{
			name:     "revoked downgrades",
			start:    models.TierEnterprise,
			body:     `{"type":"subscription.revoked","user_id":"user-1"}`,
			wantTier: models.TierFree,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newWebhookEnv(t, true)
			require.NoError(t, env.users.SetSubscription(context.Background(), "user-1", tt.start))

			change, err := env.deliver(t, tt.body)
			require.NoError(t, err)
			require.NotNil(t, change)
			assert.Equal(t, "user-1", change.UserID)
			assert.Equal(t, tt.wantTier, change.Tier)
			assert.Equal(t, tt.wantTier, env.tier(t))

			// redelivery writes the same value
			_, err = env.deliver(t, tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTier, env.tier(t))
		})
	}
}

func TestHandleWebhook_Acknowledged(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unhandled event type", `{"type":"checkout.created","userId":"user-1"}`},
		{"active event leaves tier alone", `{"type":"subscription.active","userId":"user-1"}`},
		{"unknown user", fmt.Sprintf(`{"type":"order.paid","userId":"ghost","productId":%q}`, proProduct)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newWebhookEnv(t, true)

			change, err := env.deliver(t, tt.body)
			require.NoError(t, err)
			assert.Nil(t, change)
			assert.Equal(t, models.TierFree, env.tier(t))
		})
	}
}

func TestHandleWebhook_Rejected(t *testing.T) {
	t.Run("no verifier configured", func(t *testing.T) {
		env := newWebhookEnv(t, false)
		_, err := env.svc.HandleWebhook(context.Background(), services.WebhookHeaders{}, []byte(`{}`))
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("bad signature", func(t *testing.T) {
		env := newWebhookEnv(t, true)
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		body := []byte(fmt.Sprintf(`{"type":"order.paid","userId":"user-1","productId":%q}`, proProduct))
		_, err := env.svc.HandleWebhook(context.Background(), services.WebhookHeaders{
			ID: "msg_1", Timestamp: ts, Signature: "v1,AAAA",
		}, body)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Equal(t, models.TierFree, env.tier(t))
	})

	tests := []struct {
		name string
		body string
	}{
		{"not json", `type=order.paid`},
		{"no event type", `{"userId":"user-1"}`},
		{"no user id", fmt.Sprintf(`{"type":"order.paid","productId":%q}`, proProduct)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newWebhookEnv(t, true)
			_, err := env.deliver(t, tt.body)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, models.TierFree, env.tier(t))
		})
	}
}

func TestApplyEntitlement_UnknownTier(t *testing.T) {
	env := newWebhookEnv(t, true)
	err := env.svc.ApplyEntitlement(context.Background(), &services.EntitlementChange{
		EventType: EventOrderPaid,
		UserID:    "user-1",
		Tier:      "GOLD",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, models.TierFree, env.tier(t))
}
