package views

import (
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/notify"
)

// Layout is the chrome shared by every page: title, navigation state, the
// signed-in user and pending notices.
type Layout struct {
	Title           string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	IsAdmin         bool
	CanViewAdmin    bool
	User            *models.User
	AvatarURL       string
	Notices         []notify.Notice
}

// LayoutProvider exposes layout metadata to the renderer.
type LayoutProvider interface {
	LayoutData() *Layout
}

func (l *Layout) LayoutData() *Layout { return l }
