package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/gateway"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/middleware"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/service"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/session"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/validation"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/views"
)

// Profile refreshes the signed-in user from the gateway before rendering.
// A deactivated account has already been signed out by the store.
func (h HandlerSet) Profile(c *gin.Context) {
	store := middleware.Session(c)
	if err := store.FetchCurrentUser(c.Request.Context()); errors.Is(err, session.ErrAccountDeactivated) {
		h.rotateSession(c)
		h.redirect(c, "/login")
		return
	}
	user, ok := store.CurrentUser()
	if !ok {
		h.redirect(c, "/login")
		return
	}
	h.profilePage(c, http.StatusOK, user, nil)
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	store := middleware.Session(c)
	current, ok := store.CurrentUser()
	if !ok {
		h.redirect(c, "/login")
		return
	}

	var form validation.ProfileForm
	bindErr := c.ShouldBind(&form)
	// Failed submissions re-render with what was typed, not the stored record.
	submitted := withSubmitted(current, form)
	if bindErr != nil {
		h.profilePage(c, http.StatusUnprocessableEntity, submitted, validation.Messages(bindErr))
		return
	}
	fh, err := optionalFile(c, "profile_image")
	if err != nil {
		h.profilePage(c, http.StatusBadRequest, submitted, []string{"Could not read the uploaded image."})
		return
	}
	in := service.ProfileInput{Fields: form.Fields(), Image: fh}

	if _, err := h.profiles.Update(c.Request.Context(), store, in); err != nil {
		if h.endSession(c, err) {
			return
		}
		switch {
		case errors.Is(err, service.ErrInvalidImage):
			h.profilePage(c, http.StatusUnprocessableEntity, submitted, []string{imageMessage(err)})
		case errors.Is(err, gateway.ErrNotFound):
			flashError(c, "User not found")
			h.profilePage(c, http.StatusNotFound, submitted, nil)
		default:
			h.log.Error().Err(err).Str("user_id", current.ID).Msg("profile update failed")
			flashError(c, "Failed to update profile")
			h.profilePage(c, http.StatusBadGateway, submitted, nil)
		}
		return
	}

	flashSuccess(c, "Profile updated successfully")
	h.redirect(c, "/profile")
}

func withSubmitted(u models.User, f validation.ProfileForm) models.User {
	u.FullName = f.FullName
	u.Phone = f.Phone
	u.Address = f.Address
	u.DOB = f.DOB
	u.Gender = f.Gender
	u.Bio = f.Bio
	u.Organization = f.Organization
	return u
}

func (h HandlerSet) profilePage(c *gin.Context, status int, user models.User, errs []string) {
	page := &views.ProfilePage{
		Profile:  user,
		ImageURL: avatarURL(user.ProfileImage),
		Errors:   errs,
		MaxMB:    max(1, h.profiles.MaxBytes()>>20),
	}
	page.Layout = h.layout(c, "My profile", "profile")
	h.html(c, status, "profile", page)
}
