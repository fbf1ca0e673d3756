package forms

import (
	"context"
	"testing"

	"formzen/internal/cache"
	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
	"formzen/internal/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")

	form := env.draft(t, owner)
	assert.NotZero(t, form.ID)
	assert.Equal(t, "u1", form.OwnerID)
	assert.False(t, form.Published)
	assert.Zero(t, form.Submissions)
	assert.Nil(t, form.ShareToken)

	_, err := env.formSvc.Create(ctx, nil, form.Content)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = env.formSvc.Create(ctx, owner, models.FormContent{FormTitle: "empty"})
	assert.ErrorIs(t, err, domain.ErrShape)
}

func TestFormService_CreateInvalidatesOwnerListing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")

	env.draft(t, owner)
	forms, err := env.formSvc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, forms, 1)

	var cached []models.Form
	ok, err := env.cache.Get(ctx, cache.OwnerFormsKey("u1"), &cached)
	require.NoError(t, err)
	require.True(t, ok)

	env.draft(t, owner)
	forms, err = env.formSvc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, forms, 2)
}

func TestFormService_Publish(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")
	form := env.draft(t, owner)

	published, err := env.formSvc.Publish(ctx, form.ID, owner)
	require.NoError(t, err)
	assert.True(t, published.Published)
	require.NotNil(t, published.ShareToken)
	assert.NotEmpty(t, *published.ShareToken)

	t.Run("republish keeps the token", func(t *testing.T) {
		again, err := env.formSvc.Publish(ctx, form.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, *published.ShareToken, *again.ShareToken)
	})

	t.Run("any identity can read it afterwards", func(t *testing.T) {
		got, err := env.formSvc.Get(ctx, form.ID)
		require.NoError(t, err)
		assert.True(t, got.Published)

		public, err := env.formSvc.GetPublic(ctx, form.ID)
		require.NoError(t, err)
		assert.Equal(t, form.ID, public.ID)

		shared, err := env.formSvc.GetByShareToken(ctx, *published.ShareToken)
		require.NoError(t, err)
		assert.Equal(t, form.ID, shared.ID)
	})
}

func TestFormService_PublishByOtherIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "A")
	other := env.user(t, "B")
	form := env.draft(t, owner)

	_, err := env.formSvc.Publish(ctx, form.ID, other)
	require.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := env.forms.GetByID(ctx, form.ID)
	require.NoError(t, err)
	assert.False(t, stored.Published)
	assert.Nil(t, stored.ShareToken)

	_, err = env.formSvc.Publish(ctx, form.ID, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = env.formSvc.Publish(ctx, 999, owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFormService_PublishRefreshesCachedForm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")
	form := env.draft(t, owner)

	// warm the per-form cache with the draft
	_, err := env.formSvc.GetPublic(ctx, form.ID)
	require.ErrorIs(t, err, domain.ErrNotPublished)

	_, err = env.formSvc.Publish(ctx, form.ID, owner)
	require.NoError(t, err)

	got, err := env.formSvc.GetPublic(ctx, form.ID)
	require.NoError(t, err)
	assert.True(t, got.Published)
}

// publishDuringRead lets a publish land between a cache miss and the fill.
type publishDuringRead struct {
	repositories.FormRepository
	publish func()
}

func (r *publishDuringRead) GetByID(ctx context.Context, id int64) (*models.Form, error) {
	form, err := r.FormRepository.GetByID(ctx, id)
	if r.publish != nil {
		publish := r.publish
		r.publish = nil
		publish()
	}
	return form, err
}

func TestFormService_StaleReadNotCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")
	form := env.draft(t, owner)

	racing := &publishDuringRead{FormRepository: env.forms}
	racing.publish = func() {
		_, err := env.formSvc.Publish(ctx, form.ID, owner)
		require.NoError(t, err)
	}
	slow := NewFormService(racing, env.submissions, env.cache, env.logger)

	_, err := slow.GetPublic(ctx, form.ID)
	require.ErrorIs(t, err, domain.ErrNotPublished, "the read began before the publish")

	got, err := env.formSvc.GetPublic(ctx, form.ID)
	require.NoError(t, err)
	assert.True(t, got.Published)
}

func TestFormService_GetForOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")
	other := env.user(t, "u2")
	form := env.draft(t, owner)

	tests := []struct {
		name      string
		requester *models.User
		formID    int64
		wantErr   error
	}{
		{"owner", owner, form.ID, nil},
		{"other identity", other, form.ID, domain.ErrForbidden},
		{"no identity", nil, form.ID, domain.ErrUnauthorized},
		{"missing form", owner, 404, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.formSvc.GetForOwner(ctx, tt.formID, tt.requester)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, form.ID, got.ID)
		})
	}
}

func TestFormService_GetByShareToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.formSvc.GetByShareToken(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.formSvc.GetByShareToken(ctx, "no-such-token")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFormService_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")

	env.draft(t, owner)
	env.draft(t, owner)
	live := env.published(t, owner)

	for _, name := range []string{"Ada", "Grace"} {
		_, err := env.submitSvc.Submit(ctx, live.ID, map[string][]string{
			"name":  {name},
			"email": {name + "@example.com"},
		}, nil)
		require.NoError(t, err)
	}

	dashboard, err := env.formSvc.Dashboard(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, dashboard.DraftCount)
	assert.Equal(t, 1, dashboard.PublishedCount)
	assert.Equal(t, 2, dashboard.SubmissionCount)
	require.Len(t, dashboard.RecentSubmissions, 2)
	assert.Equal(t, "Test form", dashboard.RecentSubmissions[0].FormTitle)
	assert.Equal(t, 2, dashboard.PublishedForms[0].Submissions)

	_, err = env.formSvc.Dashboard(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestFormService_ListSubmissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")
	other := env.user(t, "u2")
	form := env.published(t, owner)

	for _, name := range []string{"a", "b", "c"} {
		_, err := env.submitSvc.Submit(ctx, form.ID, map[string][]string{"name": {name}, "email": {name}}, nil)
		require.NoError(t, err)
	}

	page, err := env.formSvc.ListSubmissions(ctx, owner, &services.ListSubmissionsRequest{FormID: form.ID, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := env.formSvc.ListSubmissions(ctx, owner, &services.ListSubmissionsRequest{FormID: form.ID, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	all, err := env.formSvc.ListSubmissions(ctx, owner, &services.ListSubmissionsRequest{FormID: form.ID, Offset: -5})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = env.formSvc.ListSubmissions(ctx, other, &services.ListSubmissionsRequest{FormID: form.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
