package gateway

import (
	"context"
	"net/http"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and signup. Signup may omit the user
// and token and only carry a message.
type AuthResponse struct {
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
	Message string       `json:"message"`
}

// SignupRequest carries the registration form. Fields are sent verbatim as
// multipart fields; Image is optional.
type SignupRequest struct {
	Fields map[string]string
	Image  *FilePart
}

// ProfileUpdate is the result of a profile update. Raw holds every field the
// gateway returned so callers can merge it into the session user.
type ProfileUpdate struct {
	ProfileImage string
	Raw          map[string]any
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	req, err := c.jsonRequest("login", http.MethodPost, Credentials{Email: email, Password: password}, "auth", "login")
	if err != nil {
		return AuthResponse{}, err
	}
	var out AuthResponse
	if err := c.do(ctx, req, &out); err != nil {
		return AuthResponse{}, err
	}
	if out.User == nil || out.Token == "" {
		return AuthResponse{}, &Error{Op: "login", Status: http.StatusOK, Message: "login response missing user or token"}
	}
	return out, nil
}

func (c *Client) Signup(ctx context.Context, in SignupRequest) (AuthResponse, error) {
	req, err := multipartRequest("signup", http.MethodPost, in.Fields, in.Image, "auth", "signup")
	if err != nil {
		return AuthResponse{}, err
	}
	var out AuthResponse
	if err := c.do(ctx, req, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

// Me fetches the current identity for token. A 403 means the account was
// deactivated.
func (c *Client) Me(ctx context.Context, token string) (models.User, error) {
	req := request{op: "me", method: http.MethodGet, path: []string{"auth", "me"}, token: token}
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, req, &out); err != nil {
		return models.User{}, err
	}
	if out.User == nil {
		return models.User{}, &Error{Op: "me", Status: http.StatusOK, Message: "response missing user"}
	}
	return *out.User, nil
}

// UpdateProfile sends the profile form for user id. The gateway answers 404
// for an unknown id and 401 for a stale token.
func (c *Client) UpdateProfile(ctx context.Context, token, id string, fields map[string]string, image *FilePart) (ProfileUpdate, error) {
	req, err := multipartRequest("update_profile", http.MethodPut, fields, image, "auth", "update", idPath(id))
	if err != nil {
		return ProfileUpdate{}, err
	}
	req.token = token
	var raw map[string]any
	if err := c.do(ctx, req, &raw); err != nil {
		return ProfileUpdate{}, err
	}
	if ok, present := raw["success"].(bool); present && !ok {
		msg, _ := raw["message"].(string)
		return ProfileUpdate{}, rejected("update_profile", msg)
	}
	out := ProfileUpdate{Raw: raw}
	out.ProfileImage, _ = raw["profile_image"].(string)
	return out, nil
}
