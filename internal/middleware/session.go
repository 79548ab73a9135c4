package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/notify"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/security"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/session"
)

const (
	sessionIDKey     = "session_id"
	sessionStoreKey  = "session_store"
	sessionRotateKey = "session_rotate"
	flashKey         = "flash"

	// The cookie only names the browser; login expiry lives in the store.
	cookieLifetime = 7 * 24 * time.Hour
)

type SessionDeps struct {
	Backend      session.Backend
	Flash        notify.FlashBackend
	Gateway      session.AuthGateway
	CookieName   string
	CookieSecret string
	SecureCookie bool
	TTL          time.Duration
	Log          zerolog.Logger
}

// BrowserSession resolves the signed session cookie, issuing a new one when
// it is missing or invalid, and opens the session store and flash channel
// for the request.
func BrowserSession(deps SessionDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, fresh := "", false
		if raw, err := c.Cookie(deps.CookieName); err == nil {
			if claims, err := security.ParseSessionCookie(raw, deps.CookieSecret); err == nil {
				sid = claims.SessionID
				fresh = claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < cookieLifetime/2
			}
		}
		if sid == "" {
			sid = security.NewSessionID()
			fresh = true
		}
		if fresh {
			if err := setSessionCookie(c, deps, sid); err != nil {
				deps.Log.Error().Err(err).Msg("sign session cookie")
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}

		key := security.StorageKey(sid)
		log := deps.Log.With().Str("request_id", c.GetString(requestIDHeader)).Logger()
		flash := notify.NewFlash(deps.Flash, key, log)

		store, err := session.Open(c.Request.Context(), deps.Backend.Scope(key), deps.Gateway,
			session.WithTTL(deps.TTL),
			session.WithLogger(log),
			session.WithNotifier(notify.Logged(log, flash)),
		)
		if err != nil {
			log.Error().Err(err).Msg("open session")
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}

		c.Set(sessionIDKey, sid)
		c.Set(sessionStoreKey, store)
		c.Set(flashKey, flash)
		c.Set(sessionRotateKey, func() error {
			next := security.NewSessionID()
			nextKey := security.StorageKey(next)
			if err := store.Rebind(c.Request.Context(), deps.Backend.Scope(nextKey)); err != nil {
				return err
			}
			if err := setSessionCookie(c, deps, next); err != nil {
				return err
			}
			flash.Move(c.Request.Context(), nextKey)
			c.Set(sessionIDKey, next)
			return nil
		})
		c.Next()
	}
}

func setSessionCookie(c *gin.Context, deps SessionDeps, sid string) error {
	signed, err := security.SignSessionCookie(deps.CookieSecret, sid, cookieLifetime)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(deps.CookieName, signed, int(cookieLifetime.Seconds()), "/", "", deps.SecureCookie, true)
	return nil
}

// RotateSession moves the request's session to a fresh id and cookie. Call it
// whenever the signed-in identity changes so an id known before the change
// is worthless after it.
func RotateSession(c *gin.Context) error {
	rotate, ok := c.Get(sessionRotateKey)
	if !ok {
		return errors.New("rotate session: no browser session")
	}
	return rotate.(func() error)()
}

func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// Session returns the request's session store. It panics when the
// BrowserSession middleware did not run.
func Session(c *gin.Context) *session.Store {
	return c.MustGet(sessionStoreKey).(*session.Store)
}

func Flash(c *gin.Context) *notify.Flash {
	return c.MustGet(flashKey).(*notify.Flash)
}
