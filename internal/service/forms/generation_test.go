package forms

import (
	"context"
	"errors"
	"testing"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/services"
	"formzen/internal/plans"
	"formzen/internal/service/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noIssuer struct{}

func (noIssuer) IssueAnonymous(userID string) (string, error) { return "token-" + userID, nil }

func newGenerationService(t *testing.T, env *testEnv, completer services.Completer) services.GenerationService {
	t.Helper()
	registry, err := plans.NewRegistry()
	require.NoError(t, err)
	gate := access.NewGate(env.users, env.forms, registry, noIssuer{}, env.logger)
	return NewGenerationService(gate, completer, env.formSvc, env.logger)
}

func TestGenerate_CreatesDraft(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "u1")
	completer := &stubCompleter{text: contactJSON}
	svc := newGenerationService(t, env, completer)

	form, err := svc.Generate(context.Background(), owner, &services.GenerateFormRequest{Description: "collect name and email"})
	require.NoError(t, err)

	assert.False(t, form.Published)
	assert.Equal(t, "u1", form.OwnerID)
	assert.Equal(t, "Contact", form.Content.FormTitle)
	require.Len(t, form.Content.FormFields, 3)
	assert.Equal(t, []string{"name", "email", "message"}, []string{
		form.Content.FormFields[0].Name,
		form.Content.FormFields[1].Name,
		form.Content.FormFields[2].Name,
	})
	assert.Equal(t, []string{"textarea"}, form.Content.FormFields[2].InputTypes)

	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "collect name and email")
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name        string
		description string
		completer   *stubCompleter
		wantErr     error
		wantCalls   int
	}{
		{"empty description", "  ", &stubCompleter{text: contactJSON}, domain.ErrValidation, 0},
		{"prose output", "contact", &stubCompleter{text: "I cannot do that"}, domain.ErrParse, 1},
		{"wrong shape", "contact", &stubCompleter{text: `{"title":"x"}`}, domain.ErrShape, 1},
		{"upstream", "contact", &stubCompleter{err: &domain.UpstreamError{Service: "gemini", Err: errors.New("503")}}, domain.ErrUpstream, 1},
		{"not configured", "contact", &stubCompleter{err: &domain.ConfigurationError{Setting: "GEMINI_API_KEY"}}, domain.ErrConfiguration, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			owner := env.user(t, "u1")
			svc := newGenerationService(t, env, tt.completer)

			_, err := svc.Generate(context.Background(), owner, &services.GenerateFormRequest{Description: tt.description})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, tt.completer.prompts, tt.wantCalls)

			if tt.completer.text != "" {
				assert.NotContains(t, err.Error(), tt.completer.text)
			}

			forms, err := env.forms.ListByOwner(context.Background(), "u1")
			require.NoError(t, err)
			assert.Empty(t, forms)
		})
	}
}

func TestGenerate_QuotaExceeded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")
	completer := &stubCompleter{text: contactJSON}
	svc := newGenerationService(t, env, completer)

	for i := 0; i < plans.DefaultFreeFormLimit; i++ {
		env.draft(t, owner)
	}

	_, err := svc.Generate(ctx, owner, &services.GenerateFormRequest{Description: "one more"})
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Empty(t, completer.prompts)

	// paid named identities are not capped
	require.NoError(t, env.users.SetSubscription(ctx, "u1", models.TierPro))
	owner.Subscription = models.TierPro
	_, err = svc.Generate(ctx, owner, &services.GenerateFormRequest{Description: "one more"})
	require.NoError(t, err)
}

func TestGenerate_RequiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	svc := newGenerationService(t, env, &stubCompleter{text: contactJSON})

	_, err := svc.Generate(context.Background(), nil, &services.GenerateFormRequest{Description: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
