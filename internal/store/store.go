// Package store owns the single application state tree and mirrors it to a
// key-value backend after every successful change.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"expense-share-go/internal/ledger"
	"expense-share-go/internal/log"
)

// Persisted keys, one JSON document each.
const (
	KeyCurrentUser  = "currentUser"
	KeyAccounts     = "accounts"
	KeyTransactions = "transactions"
	KeyUsers        = "users"
	KeyCurrency     = "currency"
)

var keys = []string{KeyCurrentUser, KeyAccounts, KeyTransactions, KeyUsers, KeyCurrency}

// Backend is a key-value store for encoded state entries.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, entries map[string][]byte) error
}

type Store struct {
	mu              sync.Mutex
	state           ledger.State
	backend         Backend
	defaultCurrency string
	logger          *log.Logger
	// keys absent from the backend at load, written on the next update
	unsaved map[string]bool
}

// Open loads the persisted state. Missing keys start empty and the data is not
// validated.
func Open(ctx context.Context, backend Backend, defaultCurrency string, logger *log.Logger) (*Store, error) {
	s := &Store{
		backend:         backend,
		defaultCurrency: defaultCurrency,
		logger:          logger.WithComponent(log.ComponentStorage),
		unsaved:         make(map[string]bool),
	}
	raw := make(map[string][]byte, len(keys))
	for _, key := range keys {
		b, ok, err := backend.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		if ok {
			raw[key] = b
		} else {
			s.unsaved[key] = true
		}
	}
	if err := decode(raw, &s.state); err != nil {
		return nil, err
	}
	if s.state.Currency == "" {
		s.state.Currency = defaultCurrency
	}
	s.logger.Info("state loaded",
		"users", len(s.state.Users),
		"accounts", len(s.state.Accounts),
		"transactions", len(s.state.Transactions),
	)
	return s, nil
}

// View runs fn with read access to the state.
func (s *Store) View(fn func(st *ledger.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

// Update runs fn against the state and persists every key that changed. The
// state is restored when fn fails or the backend rejects the write.
func (s *Store) Update(ctx context.Context, fn func(st *ledger.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := encode(&s.state)
	if err != nil {
		return err
	}
	if err := fn(&s.state); err != nil {
		s.restore(before)
		return err
	}
	after, err := encode(&s.state)
	if err != nil {
		s.restore(before)
		return err
	}

	changed := make(map[string][]byte)
	for key, b := range after {
		if s.unsaved[key] || string(before[key]) != string(b) {
			changed[key] = b
		}
	}
	if len(changed) == 0 {
		return nil
	}
	if err := s.backend.Put(ctx, changed); err != nil {
		s.restore(before)
		s.logger.ErrorContext(ctx, "persist state failed",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeDatabase,
		)
		return fmt.Errorf("persist state: %w", err)
	}
	for key := range changed {
		delete(s.unsaved, key)
	}
	s.logger.DebugContext(ctx, "state persisted", "keys", len(changed))
	return nil
}

func (s *Store) restore(raw map[string][]byte) {
	var st ledger.State
	if err := decode(raw, &st); err != nil {
		s.logger.Error("restore state failed", log.FieldError, err)
		return
	}
	s.state = st
}

func encode(st *ledger.State) (map[string][]byte, error) {
	values := map[string]any{
		KeyCurrentUser:  st.CurrentUser,
		KeyAccounts:     nonNil(st.Accounts),
		KeyTransactions: nonNil(st.Transactions),
		KeyUsers:        nonNil(st.Users),
		KeyCurrency:     st.Currency,
	}
	out := make(map[string][]byte, len(values))
	for key, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = b
	}
	return out, nil
}

func decode(raw map[string][]byte, st *ledger.State) error {
	targets := map[string]any{
		KeyCurrentUser:  &st.CurrentUser,
		KeyAccounts:     &st.Accounts,
		KeyTransactions: &st.Transactions,
		KeyUsers:        &st.Users,
		KeyCurrency:     &st.Currency,
	}
	for key, target := range targets {
		b, ok := raw[key]
		if !ok || len(b) == 0 {
			continue
		}
		if err := json.Unmarshal(b, target); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
