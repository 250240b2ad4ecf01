package ledger

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"expense-share-go/internal/models"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

// useDeterministicIDs makes ids sort in creation order and pins the clock.
func useDeterministicIDs(t *testing.T) {
	t.Helper()
	n := 0
	prevID, prevNow := newID, now
	newID = func() string {
		n++
		return fmt.Sprintf("id-%04d", n)
	}
	now = func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { newID, now = prevID, prevNow })
}

type fixture struct {
	s                               *State
	owner, editor, viewer, outsider string
	admin                           string
	account                         string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	useDeterministicIDs(t)
	s := &State{}
	f := &fixture{s: s}
	reg := func(name string, admin bool) string {
		u, err := Register(s, RegisterInput{
			Name:            name,
			Email:           name + "@example.com",
			Password:        "secret",
			ConfirmPassword: "secret",
			Admin:           admin,
		})
		if err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
		return u.ID
	}
	f.owner = reg("owner", false)
	f.editor = reg("editor", false)
	f.viewer = reg("viewer", false)
	f.outsider = reg("outsider", false)
	f.admin = reg("admin", true)

	acc, err := CreateAccount(s, f.owner, "Household")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	f.account = acc.ID
	if _, _, err := AddMember(s, f.owner, acc.ID, "editor@example.com", models.RoleEditor); err != nil {
		t.Fatalf("add editor: %v", err)
	}
	if _, _, err := AddMember(s, f.owner, acc.ID, "viewer@example.com", models.RoleViewer); err != nil {
		t.Fatalf("add viewer: %v", err)
	}
	return f
}

func (f *fixture) addTx(t *testing.T, amount float64, typ models.TransactionType, date string, status models.Status) *models.Transaction {
	t.Helper()
	tx, err := CreateTransaction(f.s, f.owner, f.account, TransactionInput{
		Amount:      amount,
		Type:        typ,
		PaymentMode: models.Online,
		Comment:     fmt.Sprintf("%s %.0f", typ, amount),
		Date:        date,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if status != models.StatusPending {
		if tx, err = SetStatus(f.s, f.owner, tx.ID, status); err != nil {
			t.Fatalf("set status: %v", err)
		}
	}
	return tx
}

// checkMemberInvariant verifies the owner is never a member and members are unique.
func checkMemberInvariant(t *testing.T, s *State) {
	t.Helper()
	for _, acc := range s.Accounts {
		seen := map[string]bool{}
		for _, m := range acc.Members {
			if m.UserID == acc.OwnerID {
				t.Fatalf("account %s lists its owner as a member", acc.ID)
			}
			if seen[m.UserID] {
				t.Fatalf("account %s lists %s twice", acc.ID, m.UserID)
			}
			seen[m.UserID] = true
		}
	}
}
