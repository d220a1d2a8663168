package middleware

import (
	"net/http"
	"strings"

	"github.com/contentgallery/internal/locale"
	"github.com/gin-gonic/gin"
)

const (
	RequestedWithHeader = "X-Requested-With"
	XMLHttpRequest      = "XMLHttpRequest"
)

// IsAjax reports whether the request was sent by client-side script.
func IsAjax(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.Header.Get(RequestedWithHeader)), XMLHttpRequest)
}

// AjaxRequired rejects requests that are not flagged as XMLHttpRequest with 403.
func AjaxRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAjax(c.Request) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": locale.Pick(locale.FromRequest(c.Request), "Only AJAX requests are allowed", "仅允许异步请求")})
			return
		}
		c.Next()
	}
}
