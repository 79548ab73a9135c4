// Package guard decides whether a protected page renders for the current
// identity. Decisions are pure; the only side effect is the notice sent to
// the visitor when their role is not allowed.
package guard

import (
	"context"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/notify"
)

const (
	LoginPath = "/login"
	HomePath  = "/"

	UnauthorizedNoticeID = "unauthorized-access"
	UnauthorizedMessage  = "You are not authorized to access this page."
)

type Outcome int

const (
	Render Outcome = iota
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	}
	return "unknown"
}

type Decision struct {
	Outcome  Outcome
	Location string
}

// Identity is anything that can name the signed-in user.
type Identity interface {
	CurrentUser() (models.User, bool)
}

func Decide(ctx context.Context, id Identity, n notify.Notifier, required []models.Role) Decision {
	user, ok := currentUser(id)
	if !ok {
		return Decision{Outcome: RedirectLogin, Location: LoginPath}
	}
	if len(required) > 0 && !user.HasRole(required...) {
		notify.Emit(ctx, n, notify.Notice{
			ID:      UnauthorizedNoticeID,
			Kind:    notify.KindError,
			Message: UnauthorizedMessage,
		})
		return Decision{Outcome: RedirectHome, Location: HomePath}
	}
	return Decision{Outcome: Render}
}

// Result carries either the rendered view or the redirect that replaced it.
type Result[V any] struct {
	Decision
	View V
}

func (r Result[V]) Rendered() bool { return r.Outcome == Render }

// Protect calls render only when the decision is Render.
func Protect[V any](ctx context.Context, id Identity, n notify.Notifier, required []models.Role, render func() V) Result[V] {
	d := Decide(ctx, id, n, required)
	if d.Outcome != Render {
		return Result[V]{Decision: d}
	}
	return Result[V]{Decision: d, View: render()}
}

func currentUser(id Identity) (models.User, bool) {
	if id == nil {
		return models.User{}, false
	}
	return id.CurrentUser()
}
