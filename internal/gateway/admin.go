package gateway

import (
	"context"
	"net/http"
)

type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (e envelope) failed() bool { return e.Success != nil && !*e.Success }

// ListUsers returns the admin user list as raw records, as shown in the
// users table.
func (c *Client) ListUsers(ctx context.Context, token string) ([]map[string]any, error) {
	req := request{op: "list_users", method: http.MethodGet, path: []string{"admin", "users"}, token: token}
	var out struct {
		envelope
		Data []map[string]any `json:"data"`
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	if out.failed() {
		return nil, rejected("list_users", out.Message)
	}
	if out.Data == nil {
		return []map[string]any{}, nil
	}
	return out.Data, nil
}

func (c *Client) BlockUser(ctx context.Context, token, id string) (string, error) {
	return c.userAction(ctx, "block_user", token, id, "block")
}

func (c *Client) UnblockUser(ctx context.Context, token, id string) (string, error) {
	return c.userAction(ctx, "unblock_user", token, id, "unblock")
}

func (c *Client) userAction(ctx context.Context, op, token, id, verb string) (string, error) {
	req := request{op: op, method: http.MethodPut, path: []string{"admin", verb, idPath(id)}, token: token}
	var out envelope
	if err := c.do(ctx, req, &out); err != nil {
		return "", err
	}
	if out.failed() {
		return "", rejected(op, out.Message)
	}
	return out.Message, nil
}
