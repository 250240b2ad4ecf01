package ledger

import (
	"testing"
	"time"

	"expense-share-go/internal/models"
)

func TestBalanceExample(t *testing.T) {
	f := newFixture(t)
	debit := f.addTx(t, 200, models.Debit, "2024-01-01", models.StatusApproved)
	credit := f.addTx(t, 500, models.Credit, "2024-01-02", models.StatusApproved)

	txs, err := FilterTransactions(f.s, f.owner, Filter{})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != credit.ID || txs[1].ID != debit.ID {
		t.Fatalf("order = %v, want [credit, debit]", ids(txs))
	}
	if got := Summarize(txs); got.Balance != 300 || got.Credit != 500 || got.Debit != 200 {
		t.Fatalf("totals = %+v, want balance 300", got)
	}
}

func TestSummarizeIgnoresUnapproved(t *testing.T) {
	f := newFixture(t)
	f.addTx(t, 100, models.Credit, "2024-01-01", models.StatusApproved)
	f.addTx(t, 40, models.Debit, "2024-01-01", models.StatusApproved)
	f.addTx(t, 1000, models.Credit, "2024-01-01", models.StatusPending)
	f.addTx(t, 900, models.Debit, "2024-01-01", models.StatusRejected)

	got := Summarize(f.s.Transactions)
	want := Totals{Credit: 100, Debit: 40, Balance: 60, Pending: 1}
	if got != want {
		t.Fatalf("totals = %+v, want %+v", got, want)
	}
}

func TestSummarizeDecimalPrecision(t *testing.T) {
	txs := []models.Transaction{
		{Amount: 0.1, Type: models.Credit, Status: models.StatusApproved},
		{Amount: 0.2, Type: models.Credit, Status: models.StatusApproved},
	}
	if got := Summarize(txs).Balance; got != 0.3 {
		t.Fatalf("balance = %v, want 0.3", got)
	}
}

func TestFilterOrderTieBreak(t *testing.T) {
	f := newFixture(t)
	a := f.addTx(t, 1, models.Debit, "2024-01-03", models.StatusPending)
	b := f.addTx(t, 2, models.Debit, "2024-01-03", models.StatusPending)
	c := f.addTx(t, 3, models.Debit, "2024-01-04", models.StatusPending)
	d := f.addTx(t, 4, models.Debit, "2023-12-31", models.StatusPending)

	txs, _ := FilterTransactions(f.s, f.viewer, Filter{AccountID: All})
	want := []string{c.ID, b.ID, a.ID, d.ID}
	got := ids(txs)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestFilterCriteria(t *testing.T) {
	f := newFixture(t)
	other, err := CreateAccount(f.s, f.editor, "Side")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.addTx(t, 10, models.Credit, "2024-01-01", models.StatusPending)
	f.addTx(t, 20, models.Debit, "2024-01-02", models.StatusPending)
	if _, err := CreateTransaction(f.s, f.editor, other.ID, TransactionInput{
		Amount: 5, Type: models.Debit, PaymentMode: models.Cash, Comment: "Coffee beans", Date: "2024-01-03",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		name  string
		actor string
		f     Filter
		want  int
	}{
		{"editor sees both accounts", f.editor, Filter{}, 3},
		{"viewer sees only shared account", f.viewer, Filter{}, 2},
		{"outsider sees nothing", f.outsider, Filter{}, 0},
		{"admin sees everything", f.admin, Filter{}, 3},
		{"by account", f.editor, Filter{AccountID: other.ID}, 1},
		{"hidden account", f.viewer, Filter{AccountID: other.ID}, 0},
		{"by type", f.editor, Filter{Type: "debit"}, 2},
		{"by mode", f.editor, Filter{Mode: "CASH"}, 1},
		{"all keyword", f.editor, Filter{Type: "ALL", Mode: "all"}, 3},
		{"search is case-insensitive", f.editor, Filter{Search: "COFFEE"}, 1},
		{"search over comment", f.editor, Filter{Search: "CREDIT 10"}, 1},
		{"combined", f.editor, Filter{Type: "DEBIT", Mode: "ONLINE"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			txs, err := FilterTransactions(f.s, tc.actor, tc.f)
			if err != nil {
				t.Fatalf("filter: %v", err)
			}
			if len(txs) != tc.want {
				t.Fatalf("got %d transactions, want %d", len(txs), tc.want)
			}
		})
	}
}

func TestWeeklyTrend(t *testing.T) {
	today := time.Date(2024, 1, 14, 18, 30, 0, 0, time.UTC)
	txs := []models.Transaction{
		{Amount: 50, Type: models.Credit, Status: models.StatusApproved, Date: "2024-01-14"},
		{Amount: 20, Type: models.Debit, Status: models.StatusApproved, Date: "2024-01-14"},
		{Amount: 5, Type: models.Debit, Status: models.StatusApproved, Date: "2024-01-08"},
		{Amount: 99, Type: models.Debit, Status: models.StatusPending, Date: "2024-01-13"},
		{Amount: 7, Type: models.Debit, Status: models.StatusApproved, Date: "2024-01-07"},
		{Amount: 8, Type: models.Debit, Status: models.StatusApproved, Date: "2024-1-14"},
	}

	week := WeeklyTrend(txs, today, 0)
	if len(week) != 7 || week[0].Date != "2024-01-08" || week[6].Date != "2024-01-14" {
		t.Fatalf("window = %s..%s", week[0].Date, week[6].Date)
	}
	if week[6].Credit != 50 || week[6].Debit != 20 || week[6].Label != "Sun" {
		t.Fatalf("today bucket = %+v", week[6])
	}
	if week[0].Debit != 5 {
		t.Fatalf("first bucket = %+v", week[0])
	}
	if week[5].Debit != 0 {
		t.Fatalf("pending entry counted: %+v", week[5])
	}

	prev := WeeklyTrend(txs, today, 1)
	if prev[0].Date != "2024-01-01" || prev[6].Date != "2024-01-07" || prev[6].Debit != 7 {
		t.Fatalf("previous week = %+v", prev)
	}
}

func ids(txs []models.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}
