package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/middleware"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/storage"
)

type healthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	Environment string            `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:      "ok",
		Checks:      make(map[string]string, len(h.probes)),
		Environment: h.cfg.Environment,
	}
	for _, p := range h.probes {
		if err := p.Check(ctx); err != nil {
			h.log.Error().Err(err).Str("probe", p.Name).Msg("health probe failed")
			resp.Checks[p.Name] = "error"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[p.Name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// CurrentSession reports the signed-in user to scripts on the page.
func (h HandlerSet) CurrentSession(c *gin.Context) {
	snap := middleware.Session(c).Snapshot()
	if !snap.Present() {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          snap.User,
		"expiresAt":     snap.ExpiresAt,
	})
}

// Avatar redirects to the mirrored copy of a profile image when one exists
// and to the gateway's image host otherwise.
func (h HandlerSet) Avatar(c *gin.Context) {
	imagePath := strings.TrimPrefix(c.Param("key"), "/")
	if storage.ObjectKey(imagePath) == "" {
		c.Status(http.StatusNotFound)
		return
	}

	if h.avatars != nil {
		u, err := h.avatars.PresignAvatar(c.Request.Context(), imagePath)
		switch {
		case err == nil:
			c.Redirect(http.StatusFound, u.String())
			return
		case !errors.Is(err, storage.ErrObjectNotFound):
			h.log.Warn().Err(err).Str("path", imagePath).Msg("presign avatar failed")
		}
	}

	target, err := url.JoinPath(h.cfg.Gateway.ImageBaseURL, imagePath)
	if err != nil {
		h.log.Error().Err(err).Msg("build avatar url")
		c.Status(http.StatusNotFound)
		return
	}
	c.Redirect(http.StatusFound, target)
}
