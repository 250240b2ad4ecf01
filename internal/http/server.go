package http

import (
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"expense-share-go/internal/ai"
	"expense-share-go/internal/config"
	"expense-share-go/internal/log"
	"expense-share-go/internal/store"
)

//go:embed schemas/transaction.schema.json
var transactionSchema []byte

type Server struct {
	cfg       *config.Config
	store     *store.Store
	advisor   *ai.Advisor
	validator *gojsonschema.Schema
	logger    *log.Logger
	now       func() time.Time
}

type Deps struct {
	Config  *config.Config
	Store   *store.Store
	Advisor *ai.Advisor
	Logger  *log.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewServer(d Deps) (*gin.Engine, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(transactionSchema))
	if err != nil {
		return nil, fmt.Errorf("load transaction schema: %w", err)
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		cfg:       d.Config,
		store:     d.Store,
		advisor:   d.Advisor,
		validator: schema,
		logger:    d.Logger.WithComponent(log.ComponentHTTP),
		now:       now,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors(d.Config))
	r.Use(log.GinMiddleware(d.Logger))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.POST("/v1/auth/register", s.authRegister)
	r.POST("/v1/auth/login", s.authLogin)

	authorized := r.Group("/v1")
	authorized.Use(s.AuthMiddleware())
	{
		authorized.POST("/auth/logout", s.authLogout)
		authorized.GET("/me", s.getMe)
		authorized.GET("/users", s.listUsers)

		authorized.GET("/accounts", s.listAccounts)
		authorized.POST("/accounts", s.createAccount)
		authorized.GET("/accounts/:id", s.getAccount)
		authorized.POST("/accounts/:id/members", s.addMember)
		authorized.PUT("/accounts/:id/members/:userId", s.updateMember)
		authorized.DELETE("/accounts/:id/members/:userId", s.removeMember)
		authorized.POST("/accounts/:id/insights", s.accountInsights)
		authorized.POST("/accounts/:id/invitations/draft", s.draftInvitation)

		authorized.GET("/transactions", s.listTransactions)
		authorized.POST("/transactions", s.createTransaction)
		authorized.GET("/transactions/export", s.exportTransactions)
		authorized.GET("/transactions/:id", s.getTransaction)
		authorized.PUT("/transactions/:id", s.updateTransaction)
		authorized.POST("/transactions/:id/status", s.setTransactionStatus)
		authorized.POST("/transactions/:id/comments", s.addComment)

		authorized.GET("/summary", s.getSummary)
		authorized.GET("/charts/weekly", s.weeklyChart)
		authorized.GET("/preferences/currency", s.getCurrency)
		authorized.PUT("/preferences/currency", s.setCurrency)
	}
	return r, nil
}

func cors(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// actorID is the authenticated user set by AuthMiddleware.
func actorID(c *gin.Context) string {
	return c.MustGet("userID").(string)
}

func loadLocation(requested, fallback string) *time.Location {
	for _, name := range []string{requested, fallback} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}
