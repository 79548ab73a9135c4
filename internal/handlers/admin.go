package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/datatable"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/gateway"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/guard"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/middleware"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/session"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/views"
)

const usersPath = "/admin/users"

var errOwnAccount = errors.New("cannot change own account")

// AdminUsers lists gateway users in a sortable, filterable table. Admins and
// invigilators may view; only admins get the block and unblock buttons.
func (h HandlerSet) AdminUsers(c *gin.Context) {
	store := middleware.Session(c)
	res := guard.Protect(c.Request.Context(), store, middleware.Flash(c), adminViewers, func() *views.AdminUsersPage {
		return h.adminUsersPage(c)
	})
	if !res.Rendered() {
		h.redirect(c, res.Location)
		return
	}
	if res.View == nil {
		return
	}
	res.View.Layout = h.layout(c, "Users", "admin")
	h.html(c, http.StatusOK, "admin_users", res.View)
}

// adminUsersPage returns nil when the gateway ended the session and the
// response has already been written.
func (h HandlerSet) adminUsersPage(c *gin.Context) *views.AdminUsersPage {
	ctx := c.Request.Context()
	snap := middleware.Session(c).Snapshot()
	page := &views.AdminUsersPage{CanManage: snap.User.HasRole(models.RoleAdmin)}

	var selected datatable.Row
	table := h.usersTable(snap, func(_ context.Context, row datatable.Row) error {
		selected = row
		return nil
	})

	raw, err := h.gw.ListUsers(ctx, snap.Token)
	if err != nil {
		if h.endSession(c, err) {
			return nil
		}
		h.log.Warn().Err(err).Msg("list users failed")
		page.LoadError = gateway.MessageOf(err, "Failed to load users.")
	}
	table.SetRows(userRows(raw))
	table.Apply(datatable.ParseState(c.Request.URL.Query()))

	if key := c.Query("selected"); key != "" {
		if err := table.Dispatch(ctx, datatable.Interaction{RowKey: key}); err != nil {
			h.log.Debug().Err(err).Str("row", key).Msg("selected row not found")
		}
	}
	page.Selected = selected
	page.Table = table.View()
	return page
}

func (h HandlerSet) AdminUserAction(c *gin.Context) {
	ctx := c.Request.Context()
	snap := middleware.Session(c).Snapshot()
	back := usersPath + safeReturn(c.PostForm("return"))

	raw, err := h.gw.ListUsers(ctx, snap.Token)
	if err != nil {
		if h.endSession(c, err) {
			return
		}
		flashError(c, gateway.MessageOf(err, "Failed to load users."))
		h.redirect(c, back)
		return
	}
	table := h.usersTable(snap, nil)
	table.SetRows(userRows(raw))

	action := c.PostForm("action")
	if action == "" {
		err = datatable.ErrUnknownAction
	} else {
		err = table.Dispatch(ctx, datatable.Interaction{RowKey: c.PostForm("row"), ActionID: action})
	}
	if err != nil {
		if h.endSession(c, err) {
			return
		}
		switch {
		case errors.Is(err, datatable.ErrRowNotFound), errors.Is(err, gateway.ErrNotFound):
			flashError(c, "User not found")
		case errors.Is(err, datatable.ErrUnknownAction):
			flashError(c, "Unknown action")
		case errors.Is(err, errOwnAccount):
			flashError(c, "You cannot change your own account.")
		default:
			h.log.Error().Err(err).Str("action", action).Msg("user action failed")
			flashError(c, gateway.MessageOf(err, "Action failed. Please try again."))
		}
		h.redirect(c, back)
		return
	}

	success := "User blocked successfully"
	if action == "unblock" {
		success = "User unblocked successfully"
	}
	h.log.Info().Str("action", action).Str("row", c.PostForm("row")).Str("by", snap.User.ID).Msg("user action applied")
	flashSuccess(c, success)
	h.redirect(c, back)
}

func (h HandlerSet) usersTable(snap session.Session, onRowClick func(context.Context, datatable.Row) error) *datatable.Table {
	act := func(call func(ctx context.Context, token, id string) (string, error)) func(context.Context, datatable.Row) error {
		return func(ctx context.Context, row datatable.Row) error {
			id := datatable.Text(row["id"])
			if snap.User != nil && id == snap.User.ID {
				return errOwnAccount
			}
			_, err := call(ctx, snap.Token, id)
			return err
		}
	}
	return datatable.New(datatable.Config{
		Columns: []datatable.Column{
			{Key: "full_name", Label: "Name"},
			{Key: "email", Label: "Email"},
			{Key: "role", Label: "Role", Render: roleBadge},
			{Key: "verified", Label: "Verified", Render: yesNo},
			{Key: "is_active", Label: "Status", Render: activeBadge},
			{Key: "created_at", Label: "Joined", Render: dateOnly},
		},
		Actions: []datatable.Action{
			{ID: "block", Label: "Block", Icon: "ban", Handle: act(h.gw.BlockUser)},
			{ID: "unblock", Label: "Unblock", Icon: "check", Handle: act(h.gw.UnblockUser)},
		},
		OnRowClick: onRowClick,
		Options: datatable.Options{
			PageSizeOptions: []int{5, 10, 20, 50},
			DefaultPageSize: 10,
			RowKey:          "id",
			EmptyText:       "No users found.",
		},
	})
}

// userRows normalises gateway records through the user model so ids and
// flags have one shape. Records that do not decode are shown as sent.
func userRows(raw []map[string]any) []datatable.Row {
	rows := make([]datatable.Row, 0, len(raw))
	for _, m := range raw {
		if u, err := models.DecodeUser(m); err == nil {
			rows = append(rows, datatable.Row(u.Map()))
			continue
		}
		rows = append(rows, datatable.Row(m))
	}
	return rows
}

// safeReturn keeps only a query string so the redirect stays on the users page.
func safeReturn(q string) string {
	if !strings.HasPrefix(q, "?") || strings.ContainsAny(q, "\r\n#") {
		return ""
	}
	return q
}

func roleBadge(v any, _ datatable.Row) template.HTML {
	role := template.HTMLEscapeString(datatable.Text(v))
	return template.HTML(`<span class="badge role-` + role + `">` + role + `</span>`)
}

func yesNo(v any, _ datatable.Row) template.HTML {
	if b, ok := v.(bool); ok && b {
		return "Yes"
	}
	return "No"
}

func activeBadge(v any, _ datatable.Row) template.HTML {
	if b, ok := v.(bool); ok && !b {
		return `<span class="badge blocked">Blocked</span>`
	}
	return `<span class="badge active">Active</span>`
}

func dateOnly(v any, _ datatable.Row) template.HTML {
	s := datatable.Text(v)
	if len(s) > 10 {
		s = s[:10]
	}
	return template.HTML(template.HTMLEscapeString(s))
}
