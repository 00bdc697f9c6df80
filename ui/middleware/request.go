package middleware

import (
	"net/http"
	"time"

	"placementdash/internal"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the per-request correlation ID
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key holding the request ID
	RequestIDKey = "request_id"
)

// RequestID propagates an incoming X-Request-ID or assigns a new UUIDv7
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = newRequestID()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// GetRequestID returns the request ID assigned by RequestID, or ""
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// RequestLogger logs one line per request after it completes
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		format := "[HTTP] %s %s %d %s rid=%s"
		args := []interface{}{c.Request.Method, path, status, time.Since(start), GetRequestID(c)}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error(format, args...)
		case status >= http.StatusBadRequest:
			logger.Warn(format, args...)
		default:
			logger.Info(format, args...)
		}
	}
}

// Recovery turns a handler panic into a 500 JSON response
func Recovery(logger *internal.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("[Recovery] panic serving %s %s rid=%s: %v", c.Request.Method, c.Request.URL.Path, GetRequestID(c), recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	})
}

// CORS allows browser calls from the listed origins. Preflight requests are
// answered with 204 whether or not the origin is allowed; disallowed
// origins simply get no CORS headers.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			c.Header("Access-Control-Expose-Headers", RequestIDHeader)
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
