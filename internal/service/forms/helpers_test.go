package forms

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"formzen/internal/cache"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
	"formzen/internal/domain/services"
	"formzen/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

const contactJSON = `{"formTitle":"Contact","formFields":[` +
	`{"label":"Name","name":"name","placeholder":"Your name","inputTypes":["text"]},` +
	`{"label":"Email","name":"email","placeholder":"you@x.com","inputTypes":["email"]},` +
	`{"label":"Message","name":"message","placeholder":"...","inputTypes":["textarea"]}]}`

type testEnv struct {
	store       *memory.Store
	users       repositories.UserRepository
	forms       repositories.FormRepository
	submissions repositories.SubmissionRepository
	tx          repositories.TransactionManager
	cache       *cache.MemoryCache
	uploader    *stubUploader
	formSvc     services.FormService
	submitSvc   services.SubmissionService
	logger      *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	env := &testEnv{
		store:       store,
		users:       memory.NewUserRepository(store),
		forms:       memory.NewFormRepository(store),
		submissions: memory.NewSubmissionRepository(store),
		tx:          memory.NewTransactionManager(store),
		cache:       cache.NewMemoryCache(0),
		uploader:    &stubUploader{urls: map[string]string{}},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	env.formSvc = NewFormService(env.forms, env.submissions, env.cache, env.logger)
	env.submitSvc = NewSubmissionService(env.forms, env.submissions, env.tx, env.uploader, env.cache, env.logger)
	return env
}

func (e *testEnv) user(t *testing.T, id string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Name: id, Subscription: models.TierFree}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) draft(t *testing.T, owner *models.User, fields ...models.Field) *models.Form {
	t.Helper()
	if len(fields) == 0 {
		fields = []models.Field{
			{Label: "Name", Name: "name", InputTypes: []string{"text"}},
			{Label: "Email", Name: "email", InputTypes: []string{"email"}},
		}
	}
	form, err := e.formSvc.Create(context.Background(), owner, models.FormContent{
		FormTitle:  "Test form",
		FormFields: fields,
	})
	require.NoError(t, err)
	return form
}

func (e *testEnv) published(t *testing.T, owner *models.User, fields ...models.Field) *models.Form {
	t.Helper()
	form := e.draft(t, owner, fields...)
	form, err := e.formSvc.Publish(context.Background(), form.ID, owner)
	require.NoError(t, err)
	return form
}

func (e *testEnv) rows(t *testing.T, formID int64) []models.Submission {
	t.Helper()
	rows, err := e.submissions.ListByForm(context.Background(), formID, 1000, 0)
	require.NoError(t, err)
	return rows
}

// stubUploader resolves attachments to fixed URLs per field
type stubUploader struct {
	mu    sync.Mutex
	urls  map[string]string
	err   error
	calls []string
}

func (u *stubUploader) Upload(ctx context.Context, field string, file models.Attachment) (*models.UploadedFile, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, field)
	if u.err != nil {
		return nil, u.err
	}
	url, ok := u.urls[field]
	if !ok {
		return nil, errors.New("no url for " + field)
	}
	return &models.UploadedFile{URL: url, PublicID: field}, nil
}

func fileAttachment(name, body string) models.Attachment {
	return models.Attachment{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

// stubCompleter returns a canned response
type stubCompleter struct {
	text    string
	err     error
	prompts []string
}

func (c *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.text, c.err
}

func (c *stubCompleter) Provider() string { return "stub" }
