package log

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// GinMiddleware attaches a request-scoped logger to the request context and
// logs one line per request once it completes.
func GinMiddleware(logger *Logger) gin.HandlerFunc {
	base := logger.WithComponent(ComponentHTTP)
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		reqLogger := base.With(FieldRequestID, requestID)
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		args := []any{
			FieldMethod, c.Request.Method,
			FieldPath, c.Request.URL.Path,
			FieldStatusCode, c.Writer.Status(),
			FieldDuration, time.Since(start).Milliseconds(),
			FieldClientIP, c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, FieldError, c.Errors.String())
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			reqLogger.ErrorContext(c.Request.Context(), "request", args...)
		case status >= 400:
			reqLogger.WarnContext(c.Request.Context(), "request", args...)
		default:
			reqLogger.InfoContext(c.Request.Context(), "request", args...)
		}
	}
}

func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext returns the request logger or a default one.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}
