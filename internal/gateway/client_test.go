package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api/", 2*time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body Credentials
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "a@x.io" || body.Password != "pw" {
			t.Errorf("unexpected body %+v", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user":  map[string]any{"id": 7, "full_name": "Asha", "role": "student", "scholarship": "merit"},
			"token": "tok",
		})
	})

	resp, err := c.Login(context.Background(), "a@x.io", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token != "tok" || resp.User.ID != "7" || resp.User.Role != models.RoleStudent {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.User.Extra["scholarship"] != "merit" {
		t.Fatalf("extra fields dropped: %+v", resp.User.Extra)
	}
}

func TestLoginStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusBadGateway, ErrUnavailable},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, map[string]string{"message": "nope"})
		})
		_, err := c.Login(context.Background(), "a", "b")
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		if StatusOf(err) != tc.status {
			t.Fatalf("status %d: StatusOf = %d", tc.status, StatusOf(err))
		}
		if MessageOf(err, "") != "nope" {
			t.Fatalf("status %d: message %q", tc.status, MessageOf(err, ""))
		}
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url+"/api/", time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.Me(context.Background(), "tok")
	if !errors.Is(err, ErrUnavailable) || StatusOf(err) != 0 {
		t.Fatalf("expected unavailable with status 0, got %v", err)
	}
	if IsSessionEnding(err) {
		t.Fatal("transport failure must not end the session")
	}
}

func TestMeSendsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization header %q", got)
		}
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "deactivated"})
	})
	_, err := c.Me(context.Background(), "tok")
	if !IsSessionEnding(err) {
		t.Fatalf("expected session ending error, got %v", err)
	}
	if MessageOf(err, "") != "deactivated" {
		t.Fatalf("expected error field used as message, got %q", MessageOf(err, ""))
	}
}

func TestSignupMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/signup" {
			t.Errorf("path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("full_name") != "Ravi" || r.FormValue("role") != "donor" {
			t.Errorf("fields %v", r.MultipartForm.Value)
		}
		f, hdr, err := r.FormFile("profile_image")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "me.png" || string(data) != "png-bytes" {
			t.Errorf("file %s %q", hdr.Filename, data)
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "registered"})
	})

	resp, err := c.Signup(context.Background(), SignupRequest{
		Fields: map[string]string{"full_name": "Ravi", "role": "donor"},
		Image:  &FilePart{Field: "profile_image", Filename: "me.png", ContentType: "image/png", Data: []byte("png-bytes")},
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.Message != "registered" || resp.User != nil {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestUpdateProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/auth/update/u 1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer")
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile_image": "uploads/p.png", "bio": "hi"})
	})
	out, err := c.UpdateProfile(context.Background(), "tok", "u 1", map[string]string{"bio": "hi"}, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out.ProfileImage != "uploads/p.png" || out.Raw["bio"] != "hi" {
		t.Fatalf("unexpected update %+v", out)
	}
}

func TestListUsersRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "not allowed"})
	})
	_, err := c.ListUsers(context.Background(), "tok")
	if !errors.Is(err, ErrRejected) || MessageOf(err, "") != "not allowed" {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestListUsersAndBlock(t *testing.T) {
	var blocked string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/users":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []map[string]any{
				{"id": 1, "full_name": "A"}, {"id": 2, "full_name": "B"},
			}})
		case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/admin/block/"):
			blocked = strings.TrimPrefix(r.URL.Path, "/api/admin/block/")
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "User blocked"})
		default:
			http.NotFound(w, r)
		}
	})

	users, err := c.ListUsers(context.Background(), "tok")
	if err != nil || len(users) != 2 {
		t.Fatalf("list users: %v %v", users, err)
	}
	msg, err := c.BlockUser(context.Background(), "tok", "2")
	if err != nil || msg != "User blocked" || blocked != "2" {
		t.Fatalf("block: %q %v (blocked %q)", msg, err, blocked)
	}
	if _, err := c.UnblockUser(context.Background(), "tok", "2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown route, got %v", err)
	}
}

func TestPayments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/payment/create-order":
			var in models.OrderRequest
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.Amount < 100 {
				writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Minimum amount is 100"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "key": "rzp_test", "amount": in.Amount * 100, "currency": "INR", "orderId": "order_1"})
		case "/api/payment/verify-payment":
			var cb models.PaymentCallback
			_ = json.NewDecoder(r.Body).Decode(&cb)
			writeJSON(w, http.StatusOK, map[string]any{"success": cb.Signature == "good"})
		case "/api/other/submit-feedback":
			writeJSON(w, http.StatusOK, map[string]any{"message": "Thanks"})
		}
	})
	ctx := context.Background()

	order, err := c.CreateOrder(ctx, models.OrderRequest{Amount: 500, Name: "N", Email: "e@x.io"})
	if err != nil || order.OrderID != "order_1" || order.Amount != 50000 || order.Key != "rzp_test" {
		t.Fatalf("create order: %+v %v", order, err)
	}
	if _, err := c.CreateOrder(ctx, models.OrderRequest{Amount: 50}); MessageOf(err, "") != "Minimum amount is 100" {
		t.Fatalf("expected rejection message, got %v", err)
	}
	if err := c.VerifyPayment(ctx, models.PaymentCallback{OrderID: "order_1", Signature: "good"}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := c.VerifyPayment(ctx, models.PaymentCallback{Signature: "bad"}); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejected verification, got %v", err)
	}
	msg, err := c.SubmitFeedback(ctx, models.Feedback{Name: "N"})
	if err != nil || msg != "Thanks" {
		t.Fatalf("feedback: %q %v", msg, err)
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("/api/", time.Second, zerolog.Nop()); err == nil {
		t.Fatal("expected error for relative base url")
	}
}
