package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/contentgallery/internal/locale"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs every request and recovers from panics.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": locale.Pick(locale.FromRequest(c.Request), "Internal server error", "服务器内部错误")})
				logger.Error("request_panic",
					append(requestFields(c, start),
						zap.String("error", fmt.Sprintf("%v", recovered)),
						zap.ByteString("stack", debug.Stack()),
					)...,
				)
				return
			}

			fields := requestFields(c, start)
			for _, err := range c.Errors {
				fields = append(fields, zap.Error(err.Err))
			}

			switch status := c.Writer.Status(); {
			case status >= http.StatusInternalServerError:
				logger.Error("request", fields...)
			case status >= http.StatusBadRequest:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context, start time.Time) []zap.Field {
	return []zap.Field{
		zap.Int("status", c.Writer.Status()),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", requestID(c)),
		zap.Duration("latency", time.Since(start)),
	}
}

func requestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-Id")
	}
	return requestID
}
