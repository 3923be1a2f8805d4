package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/oakwood-commons/unpack/pkg/logger"
)

// RequestIDHeader carries the request id back to the client.
const RequestIDHeader = "X-Request-ID"

const ctxLoggerKey = "unpack.logger"

// requestLogger tags each request with an id (reusing a valid incoming
// X-Request-ID) and logs one line when it completes.
func requestLogger(base logr.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		lgr := base.WithValues(logger.RequestIDKey, id)
		c.Set(ctxLoggerKey, lgr)
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), &lgr))

		start := time.Now()
		c.Next()

		kv := []any{
			logger.MethodKey, c.Request.Method,
			logger.PathKey, c.Request.URL.Path,
			logger.StatusKey, c.Writer.Status(),
			logger.LatencyKey, time.Since(start).String(),
			logger.ClientIPKey, c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			lgr.Error(c.Errors.Last(), "request failed", kv...)
			return
		}
		lgr.Info("request", kv...)
	}
}

// requestLog returns the logger requestLogger attached to c.
func requestLog(c *gin.Context) logr.Logger {
	if v, ok := c.Get(ctxLoggerKey); ok {
		if lgr, ok := v.(logr.Logger); ok {
			return lgr
		}
	}
	return *logger.FromContext(c.Request.Context())
}
