package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"expense-share-go/internal/ledger"
	"expense-share-go/internal/log"
)

// AuthMiddleware resolves the bearer token to a directory user and stores its
// id under "userID".
func (s *Server) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "authorization_header_missing"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(401, gin.H{"error": "authorization_header_invalid"})
			return
		}

		claims, err := parseToken(s.cfg.JWTSecret, parts[1])
		if err != nil {
			log.FromContext(c.Request.Context()).DebugContext(c.Request.Context(), "token rejected",
				log.FieldError, err, log.FieldErrorType, log.ErrorTypeAuth)
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid_token"})
			return
		}

		err = s.store.View(func(st *ledger.State) error {
			_, err := st.User(claims.UserID)
			return err
		})
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid_token_user_not_found"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}
