package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/security"
)

const (
	csrfKey        = "csrf_secret"
	csrfHeader     = "X-CSRF-Token"
	csrfFormField  = security.CSRFField
	csrfFailureMsg = "Your form expired. Please reload the page and try again."
)

// CSRF exposes a per-session token to templates and rejects unsafe requests
// that do not echo it back in the form or the X-CSRF-Token header.
func CSRF(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := SessionID(c)
		c.Set(csrfKey, secret)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		token := c.GetHeader(csrfHeader)
		if token == "" {
			token = c.PostForm(csrfFormField)
		}
		if !security.ValidCSRF(secret, sid, token) {
			if strings.Contains(c.GetHeader("Accept"), "application/json") || c.ContentType() == gin.MIMEJSON {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": csrfFailureMsg})
				return
			}
			c.String(http.StatusForbidden, csrfFailureMsg)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CSRFToken derives the token for the current session id, so it follows a
// rotation made earlier in the request.
func CSRFToken(c *gin.Context) string {
	secret, ok := c.Get(csrfKey)
	if !ok {
		return ""
	}
	return security.CSRFToken(secret.(string), SessionID(c))
}
