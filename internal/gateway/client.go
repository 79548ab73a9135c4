// Package gateway is the HTTP client for the ScholarHub API: authentication,
// admin user management, feedback and payments. It owns no state.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const maxErrorBody = 64 << 10

type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, timeout time.Duration, log zerolog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gateway base url %q must be absolute", baseURL)
	}
	c := &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FilePart is a binary form field such as a profile image.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

type request struct {
	op          string
	method      string
	path        []string
	token       string
	body        io.Reader
	contentType string
}

func (c *Client) jsonRequest(op, method string, payload any, path ...string) (request, error) {
	req := request{op: op, method: method, path: path}
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return request{}, fmt.Errorf("%s: encode body: %w", op, err)
		}
		req.body = bytes.NewReader(buf)
		req.contentType = "application/json"
	}
	return req, nil
}

func multipartRequest(op, method string, fields map[string]string, file *FilePart, path ...string) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, key := range sortedKeys(fields) {
		if err := w.WriteField(key, fields[key]); err != nil {
			return request{}, fmt.Errorf("%s: write field %s: %w", op, key, err)
		}
	}
	if file != nil && len(file.Data) > 0 {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
		if file.ContentType != "" {
			h.Set("Content-Type", file.ContentType)
		} else {
			h.Set("Content-Type", "application/octet-stream")
		}
		part, err := w.CreatePart(h)
		if err != nil {
			return request{}, fmt.Errorf("%s: create file part: %w", op, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return request{}, fmt.Errorf("%s: write file part: %w", op, err)
		}
	}
	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("%s: close multipart: %w", op, err)
	}
	return request{op: op, method: method, path: path, body: &buf, contentType: w.FormDataContentType()}, nil
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	start := time.Now()
	status := 0
	defer func() {
		observe(r.op, status, time.Since(start))
	}()

	endpoint := c.base.JoinPath(r.path...)
	req, err := http.NewRequestWithContext(ctx, r.method, endpoint.String(), r.body)
	if err != nil {
		return &Error{Op: r.op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", r.op).Msg("gateway request failed")
		return &Error{Op: r.op, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := &Error{Op: r.op, Status: resp.StatusCode, Message: readMessage(resp.Body)}
		c.log.Debug().Str("op", r.op).Int("status", resp.StatusCode).Str("message", gwErr.Message).Msg("gateway error response")
		return gwErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &Error{Op: r.op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Ping reports whether the gateway answers HTTP at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: "ping", Err: err}
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &Error{Op: "ping", Status: resp.StatusCode}
	}
	return nil
}

func readMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func rejected(op, message string) error {
	return &Error{Op: op, Status: http.StatusOK, Message: message, Rejected: true}
}

func idPath(id string) string {
	return url.PathEscape(id)
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
