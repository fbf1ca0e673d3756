// Package memory implements the repository interfaces in process. It backs
// local development without DATABASE_URL and the service tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
)

// Store is the shared state behind all in-memory repositories
type Store struct {
	mu           sync.Mutex
	txMu         sync.Mutex
	users        map[string]models.User
	forms        map[int64]models.Form
	submissions  []models.Submission
	nextFormID   int64
	nextSubmitID int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:        make(map[string]models.User),
		forms:        make(map[int64]models.Form),
		nextFormID:   1,
		nextSubmitID: 1,
	}
}

type snapshot struct {
	users        map[string]models.User
	forms        map[int64]models.Form
	submissions  []models.Submission
	nextFormID   int64
	nextSubmitID int64
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		users:        maps.Clone(s.users),
		forms:        maps.Clone(s.forms),
		submissions:  append([]models.Submission(nil), s.submissions...),
		nextFormID:   s.nextFormID,
		nextSubmitID: s.nextSubmitID,
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.forms = snap.forms
	s.submissions = snap.submissions
	s.nextFormID = snap.nextFormID
	s.nextSubmitID = snap.nextSubmitID
}

type txKey struct{}

// lockWrite locks the store for a write. Outside a transaction the write also
// waits for any running transaction, whose rollback would otherwise undo it.
func (s *Store) lockWrite(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// TransactionManager serializes units of work and rolls the store back when
// one fails.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager over store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx runs fn atomically with respect to other ExecTx calls
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	snap := tm.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		tm.store.restore(snap)
		return err
	}
	return nil
}
