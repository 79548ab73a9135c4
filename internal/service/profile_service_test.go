package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/gateway"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/media/sniffer"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/session"
)

type fakeProfileGateway struct {
	resp   gateway.ProfileUpdate
	err    error
	token  string
	id     string
	fields map[string]string
	image  *gateway.FilePart
}

func (f *fakeProfileGateway) UpdateProfile(_ context.Context, token, id string, fields map[string]string, image *gateway.FilePart) (gateway.ProfileUpdate, error) {
	f.token, f.id, f.fields, f.image = token, id, fields, image
	return f.resp, f.err
}

type mirrorRecorder struct {
	paths []string
}

func (m *mirrorRecorder) PutAvatar(_ context.Context, imagePath string, _ []byte, _ string) error {
	m.paths = append(m.paths, imagePath)
	return nil
}

type noAuth struct{}

func (noAuth) Login(context.Context, string, string) (gateway.AuthResponse, error) {
	return gateway.AuthResponse{}, errors.New("unused")
}
func (noAuth) Signup(context.Context, gateway.SignupRequest) (gateway.AuthResponse, error) {
	return gateway.AuthResponse{}, errors.New("unused")
}
func (noAuth) Me(context.Context, string) (models.User, error) {
	return models.User{}, errors.New("unused")
}

func signedIn(t *testing.T) *session.Store {
	t.Helper()
	ctx := context.Background()
	store, err := session.Open(ctx, session.NewMemoryBackend(time.Hour).Scope("k"), noAuth{})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	user := models.User{ID: "42", FullName: "Old Name", Email: "a@x.io", Role: models.RoleDonor, ProfileImage: "uploads/old.png"}
	if err := store.Establish(ctx, user, "tok"); err != nil {
		t.Fatalf("establish: %v", err)
	}
	return store
}

func fileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="profile_image"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(data)
	_ = w.Close()

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["profile_image"][0]
}

var png = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestUpdateMergesIntoSession(t *testing.T) {
	store := signedIn(t)
	gw := &fakeProfileGateway{resp: gateway.ProfileUpdate{ProfileImage: "uploads/new.png"}}
	mirror := &mirrorRecorder{}
	svc := NewProfileService(gw, mirror, 1024, zerolog.Nop())

	updated, err := svc.Update(context.Background(), store, ProfileInput{
		Fields: map[string]string{"full_name": "New Name", "bio": "hello"},
		Image:  fileHeader(t, `C:\photos\me.jpeg`, "image/png", png),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if gw.token != "tok" || gw.id != "42" {
		t.Fatalf("gateway called with %q %q", gw.token, gw.id)
	}
	if gw.image == nil || gw.image.Filename != "me.png" || gw.image.ContentType != "image/png" {
		t.Fatalf("unexpected image part %+v", gw.image)
	}
	if updated.FullName != "New Name" || updated.Bio != "hello" || updated.ProfileImage != "uploads/new.png" || updated.Role != models.RoleDonor {
		t.Fatalf("unexpected merged user %+v", updated)
	}
	if u, _ := store.CurrentUser(); u.FullName != "New Name" {
		t.Fatalf("session not updated: %+v", u)
	}
	if len(mirror.paths) != 1 || mirror.paths[0] != "uploads/new.png" {
		t.Fatalf("avatar not mirrored: %v", mirror.paths)
	}
}

func TestUpdateRejectsBadImages(t *testing.T) {
	svc := NewProfileService(&fakeProfileGateway{}, nil, 8, zerolog.Nop())
	store := signedIn(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, store, ProfileInput{Image: fileHeader(t, "big.png", "image/png", png)})
	if !errors.Is(err, ErrInvalidImage) || !errors.Is(err, sniffer.ErrTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}

	svc = NewProfileService(&fakeProfileGateway{}, nil, 1024, zerolog.Nop())
	_, err = svc.Update(ctx, store, ProfileInput{Image: fileHeader(t, "doc.png", "image/png", []byte("%PDF-1.4 hello"))})
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected invalid image, got %v", err)
	}

	_, err = svc.Update(ctx, store, ProfileInput{Image: fileHeader(t, "a.jpg", "image/jpeg", png)})
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected declared type mismatch, got %v", err)
	}
}

func TestUpdateSanitisesSVG(t *testing.T) {
	gw := &fakeProfileGateway{}
	svc := NewProfileService(gw, nil, 1024, zerolog.Nop())
	svgData := []byte(`<svg xmlns="http://www.w3.org/2000/svg" onload="x()"><circle r="1"/></svg>`)

	if _, err := svc.Update(context.Background(), signedIn(t), ProfileInput{Image: fileHeader(t, "a.svg", "image/svg+xml", svgData)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if strings.Contains(string(gw.image.Data), "onload") {
		t.Fatalf("svg not sanitised: %s", gw.image.Data)
	}
}

func TestUpdatePassesGatewayErrorsThrough(t *testing.T) {
	store := signedIn(t)
	gw := &fakeProfileGateway{err: &gateway.Error{Op: "update_profile", Status: http.StatusUnauthorized}}
	svc := NewProfileService(gw, nil, 1024, zerolog.Nop())

	_, err := svc.Update(context.Background(), store, ProfileInput{Fields: map[string]string{"full_name": "X"}})
	if !gateway.IsSessionEnding(err) {
		t.Fatalf("expected session ending error, got %v", err)
	}
	if u, _ := store.CurrentUser(); u.FullName != "Old Name" {
		t.Fatal("failed update changed the session")
	}
}

func TestUpdateWithoutSession(t *testing.T) {
	store, _ := session.Open(context.Background(), session.NewMemoryBackend(time.Hour).Scope("x"), noAuth{})
	svc := NewProfileService(&fakeProfileGateway{}, nil, 1024, zerolog.Nop())
	if _, err := svc.Update(context.Background(), store, ProfileInput{}); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}
