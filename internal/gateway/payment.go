package gateway

import (
	"context"
	"net/http"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
)

// SubmitFeedback posts the contact form and returns the gateway message.
func (c *Client) SubmitFeedback(ctx context.Context, fb models.Feedback) (string, error) {
	req, err := c.jsonRequest("submit_feedback", http.MethodPost, fb, "other", "submit-feedback")
	if err != nil {
		return "", err
	}
	var out envelope
	if err := c.do(ctx, req, &out); err != nil {
		return "", err
	}
	if out.failed() {
		return "", rejected("submit_feedback", out.Message)
	}
	return out.Message, nil
}

func (c *Client) CreateOrder(ctx context.Context, in models.OrderRequest) (models.Order, error) {
	req, err := c.jsonRequest("create_order", http.MethodPost, in, "payment", "create-order")
	if err != nil {
		return models.Order{}, err
	}
	var out struct {
		envelope
		models.Order
	}
	if err := c.do(ctx, req, &out); err != nil {
		return models.Order{}, err
	}
	if out.failed() || out.OrderID == "" {
		return models.Order{}, rejected("create_order", out.Message)
	}
	return out.Order, nil
}

func (c *Client) VerifyPayment(ctx context.Context, cb models.PaymentCallback) error {
	req, err := c.jsonRequest("verify_payment", http.MethodPost, cb, "payment", "verify-payment")
	if err != nil {
		return err
	}
	var out envelope
	if err := c.do(ctx, req, &out); err != nil {
		return err
	}
	if out.Success == nil || !*out.Success {
		return rejected("verify_payment", out.Message)
	}
	return nil
}
