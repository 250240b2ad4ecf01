package http

import (
	"github.com/gin-gonic/gin"

	"expense-share-go/internal/ledger"
	"expense-share-go/internal/log"
	"expense-share-go/internal/models"
)

// accountView is an account as seen by the caller.
type accountView struct {
	models.Account
	Role models.Role `json:"role"`
}

// GET /v1/accounts
func (s *Server) listAccounts(c *gin.Context) {
	var out []accountView
	err := s.store.View(func(st *ledger.State) error {
		actor, err := st.User(actorID(c))
		if err != nil {
			return err
		}
		for _, acc := range ledger.VisibleAccounts(st, &actor) {
			out = append(out, accountView{Account: acc, Role: ledger.EffectiveRole(&actor, &acc)})
		}
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	if out == nil {
		out = []accountView{}
	}
	c.JSON(200, gin.H{"accounts": out})
}

// POST /v1/accounts
func (s *Server) createAccount(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	var acc *models.Account
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		var err error
		acc, err = ledger.CreateAccount(st, actorID(c), input.Name)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	log.FromContext(c.Request.Context()).InfoContext(c.Request.Context(), "account created",
		log.FieldAccountID, acc.ID, log.FieldUserID, actorID(c))
	c.JSON(201, accountView{Account: *acc, Role: models.RoleOwner})
}

// GET /v1/accounts/:id
func (s *Server) getAccount(c *gin.Context) {
	var view accountView
	err := s.store.View(func(st *ledger.State) error {
		acc, role, err := ledger.GetAccount(st, actorID(c), c.Param("id"))
		if err != nil {
			return err
		}
		view = accountView{Account: *acc, Role: role}
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, view)
}

type memberInput struct {
	Email string      `json:"email" binding:"required"`
	Role  models.Role `json:"role" binding:"required"`
}

// POST /v1/accounts/:id/members
func (s *Server) addMember(c *gin.Context) {
	var input memberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	var (
		acc    *models.Account
		member *models.User
	)
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		var err error
		acc, member, err = ledger.AddMember(st, actorID(c), c.Param("id"), input.Email, input.Role)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	log.FromContext(c.Request.Context()).InfoContext(c.Request.Context(), "member added",
		log.FieldAccountID, acc.ID, log.FieldUserID, member.ID, log.FieldOperation, log.OpInvite)
	c.JSON(201, gin.H{"account": accountView{Account: *acc, Role: models.RoleOwner}, "member": member.Public()})
}

// PUT /v1/accounts/:id/members/:userId
func (s *Server) updateMember(c *gin.Context) {
	var input struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	var acc *models.Account
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		var err error
		acc, err = ledger.UpdateMemberRole(st, actorID(c), c.Param("id"), c.Param("userId"), input.Role)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, accountView{Account: *acc, Role: models.RoleOwner})
}

// DELETE /v1/accounts/:id/members/:userId
func (s *Server) removeMember(c *gin.Context) {
	var acc *models.Account
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		var err error
		acc, err = ledger.RemoveMember(st, actorID(c), c.Param("id"), c.Param("userId"))
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, accountView{Account: *acc, Role: models.RoleOwner})
}

// POST /v1/accounts/:id/insights
func (s *Server) accountInsights(c *gin.Context) {
	var (
		acc      *models.Account
		txs      []models.Transaction
		currency string
	)
	err := s.store.View(func(st *ledger.State) error {
		var err error
		if acc, _, err = ledger.GetAccount(st, actorID(c), c.Param("id")); err != nil {
			return err
		}
		if txs, err = ledger.FilterTransactions(st, actorID(c), ledger.Filter{AccountID: acc.ID}); err != nil {
			return err
		}
		currency = st.Currency
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	summary := s.advisor.SummarizeAccount(c.Request.Context(), *acc, txs, currency)
	c.JSON(200, gin.H{"summary": summary})
}

// POST /v1/accounts/:id/invitations/draft
func (s *Server) draftInvitation(c *gin.Context) {
	var input memberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if !input.Role.MemberRole() {
		s.fail(c, ledger.ErrInvalidRole)
		return
	}

	var (
		acc     *models.Account
		inviter models.User
	)
	err := s.store.View(func(st *ledger.State) error {
		var (
			role models.Role
			err  error
		)
		if acc, role, err = ledger.GetAccount(st, actorID(c), c.Param("id")); err != nil {
			return err
		}
		if !ledger.CanManageMembers(role) {
			return ledger.ErrForbidden
		}
		inviter, err = st.User(actorID(c))
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	draft := s.advisor.DraftInvitation(c.Request.Context(), inviter, *acc, input.Email, input.Role)
	c.JSON(200, gin.H{"draft": draft})
}
