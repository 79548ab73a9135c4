package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/gateway"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/middleware"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/validation"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/views"
)

// feedbackTimeLayout is the datetime format the feedback endpoint expects.
const feedbackTimeLayout = "2006-01-02 15:04:05"

func (h HandlerSet) Home(c *gin.Context) {
	h.html(c, http.StatusOK, "home", &views.StaticPage{Layout: h.layout(c, "", "home")})
}

func (h HandlerSet) About(c *gin.Context) {
	h.html(c, http.StatusOK, "about", &views.StaticPage{Layout: h.layout(c, "About", "about")})
}

func (h HandlerSet) ContactForm(c *gin.Context) {
	h.html(c, http.StatusOK, "contact", &views.ContactPage{Layout: h.layout(c, "Contact", "contact")})
}

func (h HandlerSet) SubmitContact(c *gin.Context) {
	var form validation.ContactForm
	bindErr := c.ShouldBind(&form)

	if form.IsSpam() {
		h.log.Warn().Str("ip", c.ClientIP()).Msg("contact honeypot triggered")
		flashError(c, "Spam detected")
		h.redirect(c, "/contact")
		return
	}
	if bindErr != nil {
		page := &views.ContactPage{Form: form, Errors: validation.Messages(bindErr)}
		page.Layout = h.layout(c, "Contact", "contact")
		h.html(c, http.StatusUnprocessableEntity, "contact", page)
		return
	}

	msg, err := h.gw.SubmitFeedback(c.Request.Context(), models.Feedback{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Mobile:   form.Mobile,
		Message:  strings.TrimSpace(form.Message),
		DateTime: time.Now().Format(feedbackTimeLayout),
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("submit feedback failed")
		flashError(c, gateway.MessageOf(err, "Failed to send message. Please try again."))
		page := &views.ContactPage{Form: form}
		page.Layout = h.layout(c, "Contact", "contact")
		h.html(c, http.StatusBadGateway, "contact", page)
		return
	}
	if msg == "" {
		msg = "Message sent successfully!"
	}
	flashSuccess(c, msg)
	h.redirect(c, "/contact")
}

func (h HandlerSet) DonateForm(c *gin.Context) {
	page := &views.DonatePage{
		Presets:      h.cfg.Payment.PresetAmounts,
		MinAmount:    h.cfg.Payment.MinAmount,
		Currency:     h.cfg.Payment.Currency,
		MerchantName: h.cfg.Payment.MerchantName,
	}
	if user, ok := middleware.Session(c).CurrentUser(); ok {
		page.Name = user.FullName
		page.Email = user.Email
	}
	page.Layout = h.layout(c, "Donate", "donate")
	h.html(c, http.StatusOK, "donate", page)
}

// CreateOrder is called by the checkout script and answers JSON.
func (h HandlerSet) CreateOrder(c *gin.Context) {
	var form validation.DonationForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validation.First(err)})
		return
	}
	if form.Amount < h.cfg.Payment.MinAmount {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Minimum donation is " + views.FormatINR(h.cfg.Payment.MinAmount) + ".",
		})
		return
	}

	order, err := h.gw.CreateOrder(c.Request.Context(), models.OrderRequest{
		Amount: form.Amount,
		Name:   strings.TrimSpace(form.Name),
		Email:  strings.TrimSpace(form.Email),
	})
	if err != nil {
		h.log.Error().Err(err).Int("amount", form.Amount).Msg("create order failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"message": gateway.MessageOf(err, "Could not start the payment. Please try again."),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"order":    order,
		"merchant": h.cfg.Payment.MerchantName,
		"prefill":  gin.H{"name": form.Name, "email": form.Email},
	})
}

func (h HandlerSet) VerifyPayment(c *gin.Context) {
	var cb models.PaymentCallback
	if err := c.ShouldBindJSON(&cb); err != nil || cb.OrderID == "" || cb.PaymentID == "" || cb.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Incomplete payment details."})
		return
	}
	if err := h.gw.VerifyPayment(c.Request.Context(), cb); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, gateway.ErrRejected) {
			status = http.StatusBadRequest
		}
		h.log.Warn().Err(err).Str("order_id", cb.OrderID).Msg("payment verification failed")
		c.JSON(status, gin.H{
			"success": false,
			"message": gateway.MessageOf(err, "Payment verification failed."),
		})
		return
	}
	flashSuccess(c, "Thank you for your donation!")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h HandlerSet) NotFound(c *gin.Context) {
	h.html(c, http.StatusNotFound, "error", &views.StaticPage{Layout: h.layout(c, "Page not found", "error")})
}
