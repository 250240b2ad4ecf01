package ai

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"expense-share-go/internal/ledger"
	"expense-share-go/internal/log"
	"expense-share-go/internal/models"
)

//go:embed prompts/summary.txt
var summaryPrompt string

//go:embed prompts/invitation.txt
var invitationPrompt string

// Returned in place of generated text whenever the upstream call fails.
const (
	SummaryUnavailable    = "Unable to generate insights right now. Please try again later."
	InvitationUnavailable = "Unable to draft the invitation right now. Please try again later."
)

// maxSummaryLines caps how many transactions go into one prompt.
const maxSummaryLines = 200

// Completer is the text-generation call the advisor depends on.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Advisor struct {
	llm     Completer
	timeout time.Duration
	logger  *log.Logger
	group   singleflight.Group
}

func NewAdvisor(llm Completer, timeout time.Duration, logger *log.Logger) *Advisor {
	return &Advisor{
		llm:     llm,
		timeout: timeout,
		logger:  logger.WithComponent(log.ComponentAI),
	}
}

// SummarizeAccount asks for insights on the account's transactions. Concurrent
// calls for the same account share one upstream request, which outlives any
// single caller and is bounded only by the advisor timeout.
func (a *Advisor) SummarizeAccount(ctx context.Context, account models.Account, txs []models.Transaction, currency string) string {
	prompt := summaryInput(account, txs, currency)
	shared := context.WithoutCancel(ctx)
	ch := a.group.DoChan(account.ID+"\x00"+prompt, func() (any, error) {
		return a.complete(shared, log.OpSummary, summaryPrompt, prompt, SummaryUnavailable,
			log.FieldAccountID, account.ID), nil
	})
	select {
	case res := <-ch:
		return res.Val.(string)
	case <-ctx.Done():
		return SummaryUnavailable
	}
}

// DraftInvitation writes an invitation email for a prospective member.
func (a *Advisor) DraftInvitation(ctx context.Context, inviter models.User, account models.Account, email string, role models.Role) string {
	prompt := fmt.Sprintf("Inviter: %s <%s>\nAccount: %s\nInvitee email: %s\nRole: %s",
		inviter.Name, inviter.Email, account.Name, strings.TrimSpace(email), role)
	return a.complete(ctx, log.OpInvite, invitationPrompt, prompt, InvitationUnavailable,
		log.FieldAccountID, account.ID)
}

func (a *Advisor) complete(ctx context.Context, op, system, user, fallback string, args ...any) string {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	text, err := a.llm.Complete(ctx, system, user)
	if err != nil {
		a.logger.WarnContext(ctx, "text generation failed",
			append([]any{log.FieldOperation, op, log.FieldError, err, log.FieldErrorType, log.ErrorTypeNetwork}, args...)...)
		return fallback
	}
	return text
}

func summaryInput(account models.Account, txs []models.Transaction, currency string) string {
	totals := ledger.Summarize(txs)
	sorted := append([]models.Transaction(nil), txs...)
	ledger.SortTransactions(sorted)
	if len(sorted) > maxSummaryLines {
		sorted = sorted[:maxSummaryLines]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Account: %s\nCurrency: %s\n", account.Name, currency)
	fmt.Fprintf(&b, "Approved credit: %.2f, approved debit: %.2f, balance: %.2f, pending entries: %d\n",
		totals.Credit, totals.Debit, totals.Balance, totals.Pending)
	if len(sorted) == 0 {
		b.WriteString("No transactions yet.\n")
		return b.String()
	}
	b.WriteString("Transactions:\n")
	for _, tx := range sorted {
		fmt.Fprintf(&b, "%s | %s | %s | %.2f | %s | %s\n",
			tx.Date, tx.Type, tx.PaymentMode, tx.Amount, tx.Status, strings.ReplaceAll(tx.Comment, "\n", " "))
	}
	return b.String()
}
