package models

// Feedback is the contact form payload accepted by other/submit-feedback.
type Feedback struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Message  string `json:"message"`
	DateTime string `json:"datetime"`
}

type OrderRequest struct {
	Amount int    `json:"amount"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Order is what the payment widget needs to open a checkout.
type Order struct {
	Key      string `json:"key"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	OrderID  string `json:"orderId"`
}

// PaymentCallback is forwarded verbatim from the checkout widget.
type PaymentCallback struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}
