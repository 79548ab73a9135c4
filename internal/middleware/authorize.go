package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/guard"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
)

// RequireRoles lets the request through only when the guard decides to
// render. With no roles any signed-in user passes.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := guard.Decide(c.Request.Context(), Session(c), Flash(c), roles)
		if d.Outcome != guard.Render {
			c.Redirect(http.StatusSeeOther, d.Location)
			c.Abort()
			return
		}
		c.Next()
	}
}
