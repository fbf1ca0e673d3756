package forms

import (
	"context"
	"errors"
	"sync"
	"testing"

	"formzen/internal/domain"
	"formzen/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nameField   = models.Field{Label: "Name", Name: "name", InputTypes: []string{"text"}}
	avatarField = models.Field{Label: "Avatar", Name: "file", InputTypes: []string{"file"}}
	idField     = models.Field{Label: "Passport or NID", Name: "identity", InputTypes: []string{"file", "text"}}
)

func TestSubmit_TextAndFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")
	form := env.published(t, owner, nameField, avatarField)
	env.uploader.urls["file"] = "https://cdn/x.png"

	sub, err := env.submitSvc.Submit(ctx, form.ID,
		map[string][]string{"name": {"Ada"}},
		map[string]models.Attachment{"file": fileAttachment("x.png", "png-bytes")},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Ada", "file": "https://cdn/x.png"}, sub.Content)

	rows := env.rows(t, form.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]string{"name": "Ada", "file": "https://cdn/x.png"}, rows[0].Content)

	stored, err := env.forms.GetByID(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, form.Submissions+1, stored.Submissions)
}

func TestSubmit_NotPublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")
	form := env.draft(t, owner)

	_, err := env.submitSvc.Submit(ctx, form.ID, map[string][]string{"name": {"Ada"}, "email": {"a@x"}}, nil)
	require.ErrorIs(t, err, domain.ErrNotPublished)

	assert.Empty(t, env.rows(t, form.ID))
	stored, err := env.forms.GetByID(ctx, form.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Submissions)
}

func TestSubmit_MissingForm(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.submitSvc.Submit(context.Background(), 42, map[string][]string{"name": {"Ada"}}, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmit_ConcurrentSubmissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")
	form := env.published(t, owner)

	_, err := env.submitSvc.Submit(ctx, form.ID, map[string][]string{"name": {"base"}, "email": {"b@x"}}, nil)
	require.NoError(t, err)
	base, err := env.forms.GetByID(ctx, form.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.submitSvc.Submit(ctx, form.ID, map[string][]string{"name": {"n"}, "email": {"e@x"}}, nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	stored, err := env.forms.GetByID(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, base.Submissions+2, stored.Submissions)
	assert.Len(t, env.rows(t, form.ID), base.Submissions+2)
}

func TestSubmit_ValidationCollectsEveryField(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")
	form := env.published(t, owner)

	_, err := env.submitSvc.Submit(ctx, form.ID, map[string][]string{
		"name":   {"   "},
		"email":  {""},
		"hacker": {"x"},
	}, nil)
	require.ErrorIs(t, err, domain.ErrValidation)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 3)
	assert.Contains(t, vErr.Fields, "name")
	assert.Contains(t, vErr.Fields, "email")
	assert.Contains(t, vErr.Fields, "hacker")

	assert.Empty(t, env.rows(t, form.ID))
}

func TestSubmit_MissingFields(t *testing.T) {
	daysField := models.Field{Label: "Days", Name: "days", InputTypes: []string{"checkbox"}}

	tests := []struct {
		name       string
		values     map[string][]string
		wantFields []string
	}{
		{"empty submission", map[string][]string{}, []string{"name", "email"}},
		{"nil values", nil, []string{"name", "email"}},
		{"one field left out", map[string][]string{"name": {"Ada"}}, []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			owner := env.user(t, "u1")
			form := env.published(t, owner,
				models.Field{Label: "Name", Name: "name", InputTypes: []string{"text"}},
				models.Field{Label: "Email", Name: "email", InputTypes: []string{"email"}},
				daysField,
				avatarField,
			)

			_, err := env.submitSvc.Submit(ctx, form.ID, tt.values, nil)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Len(t, vErr.Fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, vErr.Fields, f)
			}

			assert.Empty(t, env.rows(t, form.ID))
			stored, err := env.forms.GetByID(ctx, form.ID)
			require.NoError(t, err)
			assert.Zero(t, stored.Submissions)
		})
	}
}

func TestSubmit_Values(t *testing.T) {
	tests := []struct {
		name   string
		fields []models.Field
		values map[string][]string
		files  map[string]models.Attachment
		want   map[string]string
	}{
		{
			name:   "checkbox group joined",
			fields: []models.Field{{Label: "Days", Name: "days", InputTypes: []string{"checkbox"}}},
			values: map[string][]string{"days": {"mon", " ", "wed"}},
			want:   map[string]string{"days": "mon, wed"},
		},
		{
			name:   "values trimmed",
			fields: []models.Field{nameField},
			values: map[string][]string{"name": {"  Ada  "}},
			want:   map[string]string{"name": "Ada"},
		},
		{
			name:   "empty attachment stored as blank",
			fields: []models.Field{nameField, avatarField},
			values: map[string][]string{"name": {"Ada"}},
			files:  map[string]models.Attachment{"file": {Filename: ""}},
			want:   map[string]string{"name": "Ada", "file": ""},
		},
		{
			name:   "text answer for a file-or-text field",
			fields: []models.Field{idField},
			values: map[string][]string{"identity": {"NID-123"}},
			files:  map[string]models.Attachment{"identity": {}},
			want:   map[string]string{"identity": "NID-123"},
		},
		{
			name:   "file answer for a file-or-text field",
			fields: []models.Field{idField},
			values: map[string][]string{"identity": {""}},
			files:  map[string]models.Attachment{"identity": fileAttachment("id.png", "scan")},
			want:   map[string]string{"identity": "https://cdn/identity.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			owner := env.user(t, "u1")
			form := env.published(t, owner, tt.fields...)
			env.uploader.urls["identity"] = "https://cdn/identity.png"

			sub, err := env.submitSvc.Submit(context.Background(), form.ID, tt.values, tt.files)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub.Content)
		})
	}
}

func TestSubmit_FileForTextField(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "u1")
	form := env.published(t, owner, nameField)

	_, err := env.submitSvc.Submit(context.Background(), form.ID, nil,
		map[string]models.Attachment{"name": fileAttachment("x.png", "bytes")})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, env.uploader.calls)
}

func TestSubmit_UploadFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "u1")
	form := env.published(t, owner, nameField, avatarField)
	env.uploader.err = errors.New("cloudinary status 500: boom")

	_, err := env.submitSvc.Submit(ctx, form.ID,
		map[string][]string{"name": {"Ada"}},
		map[string]models.Attachment{"file": fileAttachment("x.png", "bytes")},
	)
	require.ErrorIs(t, err, domain.ErrUpstream)

	var uErr *domain.UploadError
	require.ErrorAs(t, err, &uErr)
	assert.Equal(t, "file", uErr.Field)

	assert.Empty(t, env.rows(t, form.ID))
	stored, err := env.forms.GetByID(ctx, form.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Submissions)
}

func TestSubmit_UploadNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "u1")
	form := env.published(t, owner, avatarField)
	env.uploader.err = &domain.ConfigurationError{Setting: "CLOUDINARY_API_KEY"}

	_, err := env.submitSvc.Submit(context.Background(), form.ID, nil,
		map[string]models.Attachment{"file": fileAttachment("x.png", "bytes")})
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Empty(t, env.rows(t, form.ID))
}
