package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"expense-share-go/internal/ledger"
	"expense-share-go/internal/log"
)

func openMemory(t *testing.T, backend *MemoryBackend) *Store {
	t.Helper()
	s, err := Open(context.Background(), backend, "INR", log.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func register(t *testing.T, s *Store, name string) string {
	t.Helper()
	var id string
	err := s.Update(context.Background(), func(st *ledger.State) error {
		u, err := ledger.Register(st, ledger.RegisterInput{
			Name: name, Email: name + "@example.com", Password: "pw", ConfirmPassword: "pw",
		})
		if err != nil {
			return err
		}
		id = u.ID
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return id
}

func TestOpenEmptyBackend(t *testing.T) {
	s := openMemory(t, NewMemoryBackend())
	err := s.View(func(st *ledger.State) error {
		if st.Currency != "INR" {
			t.Errorf("currency = %q, want default INR", st.Currency)
		}
		if st.CurrentUser != nil || len(st.Users) != 0 || len(st.Accounts) != 0 {
			t.Errorf("unexpected state %+v", st)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestUpdatePersistsAllKeys(t *testing.T) {
	backend := NewMemoryBackend()
	s := openMemory(t, backend)
	owner := register(t, s, "ann")

	err := s.Update(context.Background(), func(st *ledger.State) error {
		_, err := ledger.CreateAccount(st, owner, "Home")
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	for _, key := range []string{KeyCurrentUser, KeyAccounts, KeyUsers, KeyTransactions, KeyCurrency} {
		if _, ok, _ := backend.Get(context.Background(), key); !ok {
			t.Errorf("key %s not persisted", key)
		}
	}
	raw, _, _ := backend.Get(context.Background(), KeyTransactions)
	if string(raw) != "[]" {
		t.Fatalf("transactions = %s, want []", raw)
	}

	// a fresh store sees the same state
	reopened := openMemory(t, backend)
	_ = reopened.View(func(st *ledger.State) error {
		if len(st.Accounts) != 1 || st.Accounts[0].Name != "Home" {
			t.Errorf("accounts after reopen = %+v", st.Accounts)
		}
		if st.CurrentUser == nil || st.CurrentUser.ID != owner {
			t.Errorf("current user after reopen = %+v", st.CurrentUser)
		}
		return nil
	})
}

func TestUpdateRollsBackOnHandlerError(t *testing.T) {
	s := openMemory(t, NewMemoryBackend())
	owner := register(t, s, "ann")

	boom := errors.New("boom")
	err := s.Update(context.Background(), func(st *ledger.State) error {
		if _, err := ledger.CreateAccount(st, owner, "Half done"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	_ = s.View(func(st *ledger.State) error {
		if len(st.Accounts) != 0 {
			t.Errorf("partial mutation kept: %+v", st.Accounts)
		}
		return nil
	})
}

func TestUpdateRollsBackOnPersistError(t *testing.T) {
	backend := NewMemoryBackend()
	s := openMemory(t, backend)
	owner := register(t, s, "ann")

	backend.Fail = errors.New("disk full")
	err := s.Update(context.Background(), func(st *ledger.State) error {
		_, err := ledger.CreateAccount(st, owner, "Lost")
		return err
	})
	if !errors.Is(err, backend.Fail) {
		t.Fatalf("err = %v, want disk full", err)
	}
	_ = s.View(func(st *ledger.State) error {
		if len(st.Accounts) != 0 {
			t.Errorf("state diverged from storage: %+v", st.Accounts)
		}
		return nil
	})
}

func TestUpdateWritesOnlyChangedKeys(t *testing.T) {
	backend := &countingBackend{MemoryBackend: NewMemoryBackend()}
	s, err := Open(context.Background(), backend, "INR", log.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	register(t, s, "ann")
	if len(backend.last) != len(keys) {
		t.Fatalf("first write stored %d keys, want all %d", len(backend.last), len(keys))
	}

	err = s.Update(context.Background(), func(st *ledger.State) error {
		return ledger.SetCurrency(st, "EUR")
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(backend.last) != 1 {
		t.Fatalf("wrote %d keys, want only currency", len(backend.last))
	}
	var got string
	if err := json.Unmarshal(backend.last[KeyCurrency], &got); err != nil || got != "EUR" {
		t.Fatalf("currency entry = %s (%v)", backend.last[KeyCurrency], err)
	}
}

func TestOpenRejectsUndecodableEntry(t *testing.T) {
	backend := NewMemoryBackend()
	_ = backend.Put(context.Background(), map[string][]byte{KeyAccounts: []byte("{not json")})
	if _, err := Open(context.Background(), backend, "INR", log.Discard()); err == nil {
		t.Fatalf("expected decode error")
	}
}

type countingBackend struct {
	*MemoryBackend
	last map[string][]byte
}

func (c *countingBackend) Put(ctx context.Context, entries map[string][]byte) error {
	c.last = entries
	return c.MemoryBackend.Put(ctx, entries)
}
