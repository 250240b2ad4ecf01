package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expense-share-go/internal/models"
)

// All disables a Filter field.
const All = "ALL"

type Filter struct {
	AccountID string
	Type      string
	Mode      string
	Search    string
}

func (f Filter) matches(tx *models.Transaction) bool {
	if !isAll(f.AccountID) && tx.AccountID != f.AccountID {
		return false
	}
	if !isAll(f.Type) && !strings.EqualFold(string(tx.Type), f.Type) {
		return false
	}
	if !isAll(f.Mode) && !strings.EqualFold(string(tx.PaymentMode), f.Mode) {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		return strings.Contains(strings.ToLower(tx.Comment), strings.ToLower(q))
	}
	return true
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

// FilterTransactions lists the entries of accounts visible to actor that match
// f, newest date first and, within a date, highest id first.
func FilterTransactions(s *State, actorID string, f Filter) ([]models.Transaction, error) {
	actor, err := s.user(actorID)
	if err != nil {
		return nil, err
	}
	visible := map[string]bool{}
	for _, acc := range VisibleAccounts(s, actor) {
		visible[acc.ID] = true
	}

	out := []models.Transaction{}
	for i := range s.Transactions {
		tx := &s.Transactions[i]
		if visible[tx.AccountID] && f.matches(tx) {
			out = append(out, *cloneTransaction(tx))
		}
	}
	SortTransactions(out)
	return out, nil
}

// SortTransactions orders by date descending, then id descending.
func SortTransactions(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date != txs[j].Date {
			return txs[i].Date > txs[j].Date
		}
		return txs[i].ID > txs[j].ID
	})
}

type Totals struct {
	Credit  float64 `json:"credit"`
	Debit   float64 `json:"debit"`
	Balance float64 `json:"balance"`
	Pending int     `json:"pending"`
}

// Summarize totals APPROVED entries only. PENDING entries are counted, never summed.
func Summarize(txs []models.Transaction) Totals {
	credit, debit := decimal.Zero, decimal.Zero
	pending := 0
	for _, tx := range txs {
		if tx.Status == models.StatusPending {
			pending++
		}
		if tx.Status != models.StatusApproved {
			continue
		}
		amt := decimal.NewFromFloat(tx.Amount)
		if tx.Type == models.Credit {
			credit = credit.Add(amt)
		} else if tx.Type == models.Debit {
			debit = debit.Add(amt)
		}
	}
	return Totals{
		Credit:  credit.InexactFloat64(),
		Debit:   debit.InexactFloat64(),
		Balance: credit.Sub(debit).InexactFloat64(),
		Pending: pending,
	}
}

type DayBucket struct {
	Date   string  `json:"date"`
	Label  string  `json:"label"`
	Credit float64 `json:"credit"`
	Debit  float64 `json:"debit"`
}

// WeeklyTrend buckets APPROVED entries into the seven days ending weekOffset
// weeks before today, oldest day first. Entries match a day by exact date string.
func WeeklyTrend(txs []models.Transaction, today time.Time, weekOffset int) []DayBucket {
	if weekOffset < 0 {
		weekOffset = 0
	}
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location()).
		AddDate(0, 0, -7*weekOffset)

	buckets := make([]DayBucket, 7)
	credit := make([]decimal.Decimal, 7)
	debit := make([]decimal.Decimal, 7)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		day := end.AddDate(0, 0, i-6)
		buckets[i] = DayBucket{Date: day.Format(models.DateLayout), Label: day.Format("Mon")}
		index[buckets[i].Date] = i
	}

	for _, tx := range txs {
		if tx.Status != models.StatusApproved {
			continue
		}
		i, ok := index[tx.Date]
		if !ok {
			continue
		}
		amt := decimal.NewFromFloat(tx.Amount)
		switch tx.Type {
		case models.Credit:
			credit[i] = credit[i].Add(amt)
		case models.Debit:
			debit[i] = debit[i].Add(amt)
		}
	}
	for i := range buckets {
		buckets[i].Credit = credit[i].InexactFloat64()
		buckets[i].Debit = debit[i].InexactFloat64()
	}
	return buckets
}
