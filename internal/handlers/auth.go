package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/gateway"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/middleware"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/service"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/session"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/validation"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/views"
)

var signupRoles = []models.Role{models.RoleStudent, models.RoleDonor, models.RoleInvigilator, models.RoleAdmin}

func (h HandlerSet) LoginForm(c *gin.Context) {
	if user, ok := middleware.Session(c).CurrentUser(); ok {
		h.redirect(c, landingFor(user))
		return
	}
	h.html(c, http.StatusOK, "login", &views.LoginPage{Layout: h.layout(c, "Log in", "login")})
}

func (h HandlerSet) Login(c *gin.Context) {
	var form validation.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.loginFailed(c, http.StatusUnprocessableEntity, form.Email, validation.First(err))
		return
	}

	store := middleware.Session(c)
	res, err := store.Login(c.Request.Context(), session.Credentials{
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
	})
	if err != nil {
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, session.ErrGatewayUnavailable):
			status = http.StatusServiceUnavailable
		case errors.Is(err, session.ErrAccountBlocked):
			status = http.StatusForbidden
		}
		h.log.Info().Err(err).Str("email", form.Email).Msg("login rejected")
		h.loginFailed(c, status, form.Email, session.LoginMessage(err))
		return
	}

	if err := h.rotateSession(c); err != nil {
		store.Logout(c.Request.Context())
		h.loginFailed(c, http.StatusServiceUnavailable, form.Email, "Unable to start your session. Please try again.")
		return
	}

	flashSuccess(c, "Welcome back, "+res.User.FullName+"!")
	h.redirect(c, landingFor(res.User))
}

func (h HandlerSet) loginFailed(c *gin.Context, status int, email, msg string) {
	page := &views.LoginPage{Email: email, Error: msg}
	page.Layout = h.layout(c, "Log in", "login")
	h.html(c, status, "login", page)
}

func landingFor(u models.User) string {
	if u.HasRole(models.RoleAdmin) {
		return "/admin"
	}
	return "/"
}

func (h HandlerSet) SignupForm(c *gin.Context) {
	page := &views.SignupPage{Roles: signupRoles}
	page.Layout = h.layout(c, "Sign up", "signup")
	h.html(c, http.StatusOK, "signup", page)
}

// Signup registers the account and sends the visitor to the login page; it
// never signs them in.
func (h HandlerSet) Signup(c *gin.Context) {
	var form validation.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		h.signupFailed(c, http.StatusUnprocessableEntity, form, validation.Messages(err))
		return
	}

	req := session.SignupForm{Fields: form.Fields()}
	fh, err := optionalFile(c, "profile_image")
	if err != nil {
		h.signupFailed(c, http.StatusBadRequest, form, []string{"Could not read the uploaded image."})
		return
	}
	if req.Image, err = h.profiles.PrepareImage(fh); err != nil {
		h.signupFailed(c, http.StatusUnprocessableEntity, form, []string{imageMessage(err)})
		return
	}

	res, err := middleware.Session(c).Signup(c.Request.Context(), req)
	if err != nil {
		h.log.Info().Err(err).Str("email", form.Email).Msg("signup rejected")
		status := http.StatusBadRequest
		if gateway.StatusOf(err) == 0 || gateway.StatusOf(err) >= 500 {
			status = http.StatusBadGateway
		}
		h.signupFailed(c, status, form, []string{gateway.MessageOf(err, "Sign-up failed. Please try again.")})
		return
	}

	msg := res.Message
	if msg == "" {
		msg = "Sign-up successful! Please log in."
	}
	flashSuccess(c, msg)
	h.redirect(c, "/login")
}

func (h HandlerSet) signupFailed(c *gin.Context, status int, form validation.SignupForm, errs []string) {
	form.Password = ""
	page := &views.SignupPage{Form: form, Roles: signupRoles, Errors: errs}
	page.Layout = h.layout(c, "Sign up", "signup")
	h.html(c, status, "signup", page)
}

func (h HandlerSet) Logout(c *gin.Context) {
	middleware.Session(c).Logout(c.Request.Context())
	h.rotateSession(c)
	flashInfo(c, "You have been logged out.")
	h.redirect(c, "/")
}

// optionalFile returns the uploaded file, or nil when the form has none.
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return fh, err
}

func imageMessage(err error) string {
	if errors.Is(err, service.ErrInvalidImage) {
		return "Profile image must be a JPEG, PNG, GIF, WebP or SVG under the size limit."
	}
	return "Could not read the uploaded image."
}
