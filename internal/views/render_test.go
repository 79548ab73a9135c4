package views

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/datatable"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/notify"
)

func TestFormatINR(t *testing.T) {
	cases := map[int]string{
		0:       "₹0",
		100:     "₹100",
		1000:    "₹1,000",
		10000:   "₹10,000",
		100000:  "₹1,00,000",
		1234567: "₹12,34,567",
		-2500:   "-₹2,500",
	}
	for in, want := range cases {
		if got := FormatINR(in); got != want {
			t.Errorf("FormatINR(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestInitials(t *testing.T) {
	if got := initials("asha  rao kulkarni"); got != "AR" {
		t.Fatalf("expected AR, got %q", got)
	}
	if got := initials(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestRenderLayout(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	for _, page := range []string{"home", "about", "contact", "donate", "login", "signup", "profile", "admin_users", "error"} {
		if !r.Has(page) {
			t.Fatalf("missing page %q", page)
		}
	}

	user := models.User{ID: "1", FullName: "Asha Rao", Role: models.RoleAdmin}
	page := &StaticPage{Layout: Layout{
		Title:           "About",
		CurrentPage:     "about",
		CSRFToken:       "tok123",
		IsAuthenticated: true,
		IsAdmin:         true,
		CanViewAdmin:    true,
		User:            &user,
		Notices:         []notify.Notice{{Kind: notify.KindSuccess, Message: "Saved <b>"}},
	}}

	var buf bytes.Buffer
	if err := r.Render(&buf, "about", page); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`content="tok123"`,
		`href="/admin"`,
		`toast-success`,
		`Saved &lt;b&gt;`,
		`Log out`,
		`AR`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderAnonymousHidesAdmin(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, "home", &StaticPage{Layout: Layout{CurrentPage: "home"}}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), `href="/admin"`) {
		t.Fatal("anonymous visitor should not see the admin link")
	}
	if !strings.Contains(buf.String(), `href="/login"`) {
		t.Fatal("expected login link")
	}
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, "missing", &StaticPage{}); err == nil {
		t.Fatal("expected error for unknown page")
	}
}

func TestRenderUsersTable(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	table := datatable.New(datatable.Config{
		Columns: []datatable.Column{{Key: "full_name", Label: "Name"}, {Key: "email", Label: "Email"}},
		Actions: []datatable.Action{{ID: "block", Label: "Block"}},
	})
	table.SetRows([]datatable.Row{
		{"id": "1", "full_name": "Asha", "email": "asha@example.com"},
		{"id": "2", "full_name": "<script>", "email": "x@example.com"},
	})
	table.Apply(datatable.ParseState(url.Values{"sort": {"full_name"}}))

	page := &AdminUsersPage{Table: table.View(), CanManage: true}
	var buf bytes.Buffer
	if err := r.Render(&buf, "admin_users", page); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Fatal("cell text must be escaped")
	}
	if !strings.Contains(out, `name="action" value="block"`) {
		t.Fatal("expected block action form")
	}
	if !strings.Contains(out, "1–2 of 2") {
		t.Fatal("expected pager summary")
	}
}

func TestRenderEmptyTable(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	table := datatable.New(datatable.Config{
		Columns: []datatable.Column{{Key: "full_name", Label: "Name"}},
		Options: datatable.Options{EmptyText: "No users found."},
	})
	page := &AdminUsersPage{Table: table.View()}
	var buf bytes.Buffer
	if err := r.Render(&buf, "admin_users", page); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `colspan="1"`) || !strings.Contains(buf.String(), "No users found.") {
		t.Fatal("expected single spanning empty row")
	}
}
