package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"expense-share-go/internal/ledger"
	"expense-share-go/internal/log"
	"expense-share-go/internal/models"
)

type AuthResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (s *Server) issue(c *gin.Context, status int, user *models.User) {
	token, err := generateToken(s.cfg.JWTSecret, user.ID, time.Duration(s.cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(status, AuthResponse{Token: token, User: user.Public()})
}

// POST /v1/auth/register
func (s *Server) authRegister(c *gin.Context) {
	var input struct {
		Name            string `json:"name" binding:"required"`
		Email           string `json:"email" binding:"required"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	var user *models.User
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		var err error
		user, err = ledger.Register(st, ledger.RegisterInput{
			Name:            input.Name,
			Email:           input.Email,
			Password:        input.Password,
			ConfirmPassword: input.ConfirmPassword,
			Admin:           s.cfg.IsAdminEmail(input.Email),
		})
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	log.FromContext(c.Request.Context()).InfoContext(c.Request.Context(), "user registered",
		log.FieldUserID, user.ID, log.FieldOperation, log.OpCreate)
	s.issue(c, 201, user)
}

// POST /v1/auth/login
func (s *Server) authLogin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	var user *models.User
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		var err error
		user, err = ledger.Login(st, input.Email, input.Password)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.issue(c, 200, user)
}

// POST /v1/auth/logout clears the persisted current user when it is the caller.
func (s *Server) authLogout(c *gin.Context) {
	userID := actorID(c)
	err := s.store.Update(c.Request.Context(), func(st *ledger.State) error {
		if st.CurrentUser != nil && st.CurrentUser.ID == userID {
			ledger.Logout(st)
		}
		return nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "logged_out"})
}

// GET /v1/me
func (s *Server) getMe(c *gin.Context) {
	var user models.User
	err := s.store.View(func(st *ledger.State) error {
		var err error
		user, err = st.User(actorID(c))
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"user": user.Public()})
}

// GET /v1/users
func (s *Server) listUsers(c *gin.Context) {
	var users []models.PublicUser
	err := s.store.View(func(st *ledger.State) error {
		var err error
		users, err = ledger.Directory(st, actorID(c))
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"users": users})
}
