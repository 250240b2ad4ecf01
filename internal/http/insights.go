package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"expense-share-go/internal/ledger"
	"expense-share-go/internal/models"
)

// GET /v1/summary?account=
func (s *Server) getSummary(c *gin.Context) {
	var (
		txs      []models.Transaction
		currency string
	)
	err := s.store.View(func(st *ledger.State) error {
		var err error
		txs, err = ledger.FilterTransactions(st, actorID(c), ledger.Filter{AccountID: c.Query("account")})
		currency = st.Currency
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"currency": currency, "totals": ledger.Summarize(txs)})
}

// GET /v1/charts/weekly?offset=&account=&tz=
func (s *Server) weeklyChart(c *gin.Context) {
	offset := 0
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(400, gin.H{"error": "invalid_request", "message": "offset must be a non-negative integer"})
			return
		}
		offset = n
	}

	var txs []models.Transaction
	err := s.store.View(func(st *ledger.State) error {
		var err error
		txs, err = ledger.FilterTransactions(st, actorID(c), ledger.Filter{AccountID: c.Query("account")})
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	today := s.now().In(loadLocation(c.Query("tz"), s.cfg.TZDefault))
	days := ledger.WeeklyTrend(txs, today, offset)
	c.JSON(200, gin.H{"offset": offset, "days": days})
}

// GET /v1/preferences/currency
func (s *Server) getCurrency(c *gin.Context) {
	var currency string
	_ = s.store.View(func(st *ledger.State) error {
		currency = st.Currency
		return nil
	})
	c.JSON(200, gin.H{"currency": currency})
}

// PUT /v1/preferences/currency
func (s *Server) setCurrency(c *gin.Context) {
	var input struct {
		Currency string `json:"currency" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	var currency string
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		if err := ledger.SetCurrency(st, input.Currency); err != nil {
			return err
		}
		currency = st.Currency
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"currency": currency})
}
