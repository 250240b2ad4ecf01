package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"expense-share-go/internal/ledger"
	"expense-share-go/internal/log"
)

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{ledger.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{ledger.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{ledger.ErrPasswordMismatch, http.StatusBadRequest, "password_mismatch"},
	{ledger.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{ledger.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
	{ledger.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{ledger.ErrInvalidCurrency, http.StatusBadRequest, "invalid_currency"},
	{ledger.ErrForbidden, http.StatusForbidden, "forbidden"},
	{ledger.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{ledger.ErrAccountNotFound, http.StatusNotFound, "account_not_found"},
	{ledger.ErrTransactionNotFound, http.StatusNotFound, "transaction_not_found"},
	{ledger.ErrMemberNotFound, http.StatusNotFound, "member_not_found"},
	{ledger.ErrAlreadyMember, http.StatusConflict, "already_member"},
	{ledger.ErrOwnerIsMember, http.StatusConflict, "owner_is_member"},
	{ledger.ErrNotPending, http.StatusConflict, "not_pending"},
}

// fail writes the JSON error for err. Unknown errors are storage or
// encoding failures and are logged.
func (s *Server) fail(c *gin.Context, err error) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			body := gin.H{"error": e.code}
			if e.status == http.StatusBadRequest {
				body["message"] = err.Error()
			}
			c.JSON(e.status, body)
			return
		}
	}
	log.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
		log.FieldError, err,
		log.FieldErrorType, log.ErrorTypeDatabase,
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_error"})
}
