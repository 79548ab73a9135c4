package guard

import (
	"context"
	"testing"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/notify"
)

type identity struct {
	user *models.User
}

func (i identity) CurrentUser() (models.User, bool) {
	if i.user == nil {
		return models.User{}, false
	}
	return *i.user, true
}

func as(role models.Role) identity {
	return identity{user: &models.User{ID: "1", Role: role}}
}

func TestDecide(t *testing.T) {
	admin := []models.Role{models.RoleAdmin}
	cases := []struct {
		name     string
		id       Identity
		required []models.Role
		want     Outcome
		location string
		notices  int
	}{
		{"anonymous", identity{}, nil, RedirectLogin, LoginPath, 0},
		{"anonymous on admin page", identity{}, admin, RedirectLogin, LoginPath, 0},
		{"nil identity", nil, admin, RedirectLogin, LoginPath, 0},
		{"any user", as(models.RoleDonor), nil, Render, "", 0},
		{"matching role", as(models.RoleAdmin), admin, Render, "", 0},
		{"second allowed role", as(models.RoleInvigilator), []models.Role{models.RoleAdmin, models.RoleInvigilator}, Render, "", 0},
		{"student on admin page", as(models.RoleStudent), admin, RedirectHome, HomePath, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &notify.Recorder{}
			d := Decide(context.Background(), tc.id, rec, tc.required)
			if d.Outcome != tc.want || d.Location != tc.location {
				t.Fatalf("expected %s %q, got %s %q", tc.want, tc.location, d.Outcome, d.Location)
			}
			if got := len(rec.Notices()); got != tc.notices {
				t.Fatalf("expected %d notices, got %d", tc.notices, got)
			}
		})
	}
}

func TestUnauthorizedNotice(t *testing.T) {
	rec := &notify.Recorder{}
	ctx := context.Background()
	Decide(ctx, as(models.RoleStudent), rec, []models.Role{models.RoleAdmin})
	Decide(ctx, as(models.RoleStudent), rec, []models.Role{models.RoleAdmin})

	notices := rec.Notices()
	if len(notices) != 1 {
		t.Fatalf("expected repeated denials to collapse, got %d", len(notices))
	}
	n := notices[0]
	if n.ID != UnauthorizedNoticeID || n.Kind != notify.KindError || n.Message != UnauthorizedMessage {
		t.Fatalf("unexpected notice %+v", n)
	}
}

func TestProtectNeverRendersOnRedirect(t *testing.T) {
	calls := 0
	render := func() string {
		calls++
		return "secret"
	}
	ctx := context.Background()

	res := Protect(ctx, identity{}, nil, nil, render)
	if res.Rendered() || res.View != "" || calls != 0 {
		t.Fatalf("anonymous visitor saw content: %+v calls=%d", res, calls)
	}

	res = Protect(ctx, as(models.RoleStudent), notify.Discard, []models.Role{models.RoleAdmin}, render)
	if res.Rendered() || calls != 0 {
		t.Fatalf("student saw admin content: %+v calls=%d", res, calls)
	}

	res = Protect(ctx, as(models.RoleAdmin), notify.Discard, []models.Role{models.RoleAdmin}, render)
	if !res.Rendered() || res.View != "secret" || calls != 1 {
		t.Fatalf("admin denied: %+v calls=%d", res, calls)
	}
}
