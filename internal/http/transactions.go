package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
	"github.com/xuri/excelize/v2"

	"expense-share-go/internal/ledger"
	"expense-share-go/internal/log"
	"expense-share-go/internal/models"
)

type transactionPayload struct {
	AccountID   string  `json:"accountId"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	PaymentMode string  `json:"paymentMode"`
	Comment     string  `json:"comment"`
	Date        string  `json:"date"`
}

func (p transactionPayload) input() ledger.TransactionInput {
	return ledger.TransactionInput{
		Amount:      p.Amount,
		Type:        models.TransactionType(p.Type),
		PaymentMode: models.PaymentMode(p.PaymentMode),
		Comment:     p.Comment,
		Date:        p.Date,
	}
}

// bindTransaction validates the raw body against the transaction schema
// before decoding it. It writes the error response itself.
func (s *Server) bindTransaction(c *gin.Context) (transactionPayload, bool) {
	var p transactionPayload
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return p, false
	}
	res, err := s.validator.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_request", "message": err.Error()})
		return p, false
	}
	if !res.Valid() {
		d := []string{}
		for _, e := range res.Errors() {
			d = append(d, e.String())
		}
		c.JSON(422, gin.H{"error": "schema_invalid", "details": d})
		return p, false
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request", "message": err.Error()})
		return p, false
	}
	return p, true
}

func filterFromQuery(c *gin.Context) ledger.Filter {
	return ledger.Filter{
		AccountID: c.Query("account"),
		Type:      c.Query("type"),
		Mode:      c.Query("mode"),
		Search:    c.Query("q"),
	}
}

func (s *Server) filtered(c *gin.Context) ([]models.Transaction, string, error) {
	var (
		txs      []models.Transaction
		currency string
	)
	err := s.store.View(func(st *ledger.State) error {
		var err error
		txs, err = ledger.FilterTransactions(st, actorID(c), filterFromQuery(c))
		currency = st.Currency
		return err
	})
	return txs, currency, err
}

// GET /v1/transactions?account=&type=&mode=&q=
func (s *Server) listTransactions(c *gin.Context) {
	txs, currency, err := s.filtered(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{
		"transactions": txs,
		"totals":       ledger.Summarize(txs),
		"currency":     currency,
	})
}

// GET /v1/transactions/:id
func (s *Server) getTransaction(c *gin.Context) {
	var (
		tx   *models.Transaction
		role models.Role
	)
	err := s.store.View(func(st *ledger.State) error {
		var err error
		tx, role, err = ledger.GetTransaction(st, actorID(c), c.Param("id"))
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"transaction": tx, "role": role})
}

// POST /v1/transactions
func (s *Server) createTransaction(c *gin.Context) {
	p, ok := s.bindTransaction(c)
	if !ok {
		return
	}
	if p.AccountID == "" {
		c.JSON(400, gin.H{"error": "invalid_request", "message": "accountId is required"})
		return
	}

	var tx *models.Transaction
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		var err error
		tx, err = ledger.CreateTransaction(st, actorID(c), p.AccountID, p.input())
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	log.FromContext(c.Request.Context()).InfoContext(c.Request.Context(), "transaction created",
		log.FieldTxID, tx.ID, log.FieldAccountID, tx.AccountID, log.FieldOperation, log.OpCreate)
	c.JSON(201, tx)
}

// PUT /v1/transactions/:id replaces content fields and resets the status to PENDING.
func (s *Server) updateTransaction(c *gin.Context) {
	p, ok := s.bindTransaction(c)
	if !ok {
		return
	}

	var tx *models.Transaction
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		current, _, err := ledger.GetTransaction(st, actorID(c), c.Param("id"))
		if err != nil {
			return err
		}
		if p.AccountID != "" && p.AccountID != current.AccountID {
			return fmt.Errorf("%w: accountId cannot change", ledger.ErrInvalidInput)
		}
		tx, err = ledger.EditTransaction(st, actorID(c), current.ID, p.input())
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, tx)
}

// POST /v1/transactions/:id/status
func (s *Server) setTransactionStatus(c *gin.Context) {
	var input struct {
		Status models.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	status := models.Status(strings.ToUpper(strings.TrimSpace(string(input.Status))))

	var tx *models.Transaction
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		var err error
		tx, err = ledger.SetStatus(st, actorID(c), c.Param("id"), status)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	log.FromContext(c.Request.Context()).InfoContext(c.Request.Context(), "transaction reviewed",
		log.FieldTxID, tx.ID, "status", tx.Status, log.FieldOperation, log.OpApprove)
	c.JSON(200, tx)
}

// POST /v1/transactions/:id/comments
func (s *Server) addComment(c *gin.Context) {
	var input struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	var tx *models.Transaction
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		var err error
		tx, err = ledger.AddComment(st, actorID(c), c.Param("id"), input.Text)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, tx)
}

// GET /v1/transactions/export writes the filtered list as an xlsx workbook.
func (s *Server) exportTransactions(c *gin.Context) {
	txs, currency, err := s.filtered(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	accountNames := map[string]string{}
	_ = s.store.View(func(st *ledger.State) error {
		for _, acc := range st.Accounts {
			accountNames[acc.ID] = acc.Name
		}
		return nil
	})

	f, err := transactionsWorkbook(txs, accountNames, currency)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		s.fail(c, fmt.Errorf("encode xlsx: %w", err))
		return
	}

	log.FromContext(c.Request.Context()).InfoContext(c.Request.Context(), "transactions exported",
		"rows", len(txs), log.FieldOperation, log.OpExport)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		s.now().Format("20060102")))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

const exportSheet = "Transactions"

// transactionsWorkbook lays txs out one row per transaction under a header row.
func transactionsWorkbook(txs []models.Transaction, accountNames map[string]string, currency string) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headers := []any{"Date", "Account", "Type", "Mode", "Amount (" + currency + ")", "Status", "Comment", "Comments"}
	if err := f.SetSheetRow(exportSheet, "A1", &headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	for idx, tx := range txs {
		row := []any{
			tx.Date, accountNames[tx.AccountID], string(tx.Type), string(tx.PaymentMode),
			tx.Amount, string(tx.Status), tx.Comment, len(tx.Comments),
		}
		if err := f.SetSheetRow(exportSheet, fmt.Sprintf("A%d", idx+2), &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", idx+2, err)
		}
	}
	for _, w := range []struct {
		col   string
		width float64
	}{{"A", 12}, {"B", 20}, {"G", 40}} {
		if err := f.SetColWidth(exportSheet, w.col, w.col, w.width); err != nil {
			f.Close()
			return nil, fmt.Errorf("set width %s: %w", w.col, err)
		}
	}
	return f, nil
}
