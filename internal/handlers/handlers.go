package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/config"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/gateway"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/middleware"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/notify"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/service"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/session"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/views"
)

// Gateway is every remote call the pages make.
type Gateway interface {
	session.AuthGateway
	service.ProfileGateway
	ListUsers(ctx context.Context, token string) ([]map[string]any, error)
	BlockUser(ctx context.Context, token, id string) (string, error)
	UnblockUser(ctx context.Context, token, id string) (string, error)
	SubmitFeedback(ctx context.Context, fb models.Feedback) (string, error)
	CreateOrder(ctx context.Context, in models.OrderRequest) (models.Order, error)
	VerifyPayment(ctx context.Context, cb models.PaymentCallback) error
}

// AvatarLinker resolves a stored avatar to a short lived URL.
type AvatarLinker interface {
	PresignAvatar(ctx context.Context, imagePath string) (*url.URL, error)
}

// Probe is one dependency checked by the health endpoint.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type Deps struct {
	Config   *config.AppConfig
	Log      zerolog.Logger
	Gateway  Gateway
	Renderer *views.Renderer
	Profiles *service.ProfileService
	Avatars  AvatarLinker
	Probes   []Probe
}

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	gw       Gateway
	render   *views.Renderer
	profiles *service.ProfileService
	avatars  AvatarLinker
	probes   []Probe
}

func NewHandlerSet(deps Deps) HandlerSet {
	return HandlerSet{
		log:      deps.Log,
		cfg:      deps.Config,
		gw:       deps.Gateway,
		render:   deps.Renderer,
		profiles: deps.Profiles,
		avatars:  deps.Avatars,
		probes:   deps.Probes,
	}
}

// RegisterOps mounts the routes that need no browser session.
func (h HandlerSet) RegisterOps(engine *gin.Engine) {
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/api/healthz", middleware.CORS(h.cfg.AllowCORSOrigins), h.Health)
	engine.GET("/media/avatar/*key", h.Avatar)
}

// RegisterSite mounts the pages. The group must already carry the session and
// CSRF middleware.
func (h HandlerSet) RegisterSite(site *gin.RouterGroup) {
	site.GET("/", h.Home)
	site.GET("/about", h.About)
	site.GET("/contact", h.ContactForm)
	site.POST("/contact", h.SubmitContact)
	site.GET("/donate", h.DonateForm)
	site.POST("/donate/order", h.CreateOrder)
	site.POST("/donate/verify", h.VerifyPayment)

	site.GET("/login", h.LoginForm)
	site.POST("/login", h.Login)
	site.GET("/signup", h.SignupForm)
	site.POST("/signup", h.Signup)
	site.POST("/logout", h.Logout)

	profile := site.Group("/profile", middleware.RequireRoles())
	profile.GET("", h.Profile)
	profile.POST("", h.UpdateProfile)

	site.GET("/admin", h.AdminUsers)
	site.GET("/admin/users", h.AdminUsers)
	site.POST("/admin/users/action", middleware.RequireRoles(models.RoleAdmin), h.AdminUserAction)

	site.GET("/api/v1/session", middleware.CORS(h.cfg.AllowCORSOrigins), h.CurrentSession)
}

var adminViewers = []models.Role{models.RoleAdmin, models.RoleInvigilator}

func flashSuccess(c *gin.Context, msg string) {
	notify.Success(c.Request.Context(), middleware.Flash(c), msg)
}

func flashInfo(c *gin.Context, msg string) {
	notify.Info(c.Request.Context(), middleware.Flash(c), msg)
}

func flashError(c *gin.Context, msg string) {
	notify.Error(c.Request.Context(), middleware.Flash(c), msg)
}

// layout assembles the shared chrome and drains pending notices. Call it
// after every notice for this response has been sent.
func (h HandlerSet) layout(c *gin.Context, title, page string) views.Layout {
	l := views.Layout{
		Title:       title,
		CurrentPage: page,
		CSRFToken:   middleware.CSRFToken(c),
	}
	if user, ok := middleware.Session(c).CurrentUser(); ok {
		l.IsAuthenticated = true
		l.User = &user
		l.IsAdmin = user.HasRole(models.RoleAdmin)
		l.CanViewAdmin = user.HasRole(adminViewers...)
		l.AvatarURL = avatarURL(user.ProfileImage)
	}
	l.Notices = middleware.Flash(c).Drain(c.Request.Context())
	return l
}

func (h HandlerSet) html(c *gin.Context, status int, page string, data views.LayoutProvider) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	c.Status(status)
	if err := h.render.Render(c.Writer, page, data); err != nil {
		h.log.Error().Err(err).Str("page", page).Msg("render page failed")
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (h HandlerSet) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// avatarURL maps a gateway image path onto the media route. Absolute URLs
// pass through.
func avatarURL(imagePath string) string {
	switch {
	case imagePath == "":
		return ""
	case strings.HasPrefix(imagePath, "http://"), strings.HasPrefix(imagePath, "https://"):
		return imagePath
	}
	return "/media/avatar/" + strings.TrimLeft(imagePath, "/")
}

// endSession runs a gateway failure through the session's auth funnel and
// redirects to the login page when it signed the visitor out.
func (h HandlerSet) endSession(c *gin.Context, err error) bool {
	ctx := c.Request.Context()
	if !middleware.Session(c).EndOnAuthFailure(ctx, err) {
		return false
	}
	h.rotateSession(c)
	flashError(c, gateway.MessageOf(err, "Your session has expired. Please log in again."))
	h.redirect(c, "/login")
	return true
}

// rotateSession moves the browser to a fresh session id after the signed-in
// identity changed.
func (h HandlerSet) rotateSession(c *gin.Context) error {
	err := middleware.RotateSession(c)
	if err != nil {
		h.log.Error().Err(err).Msg("rotate session")
	}
	return err
}
