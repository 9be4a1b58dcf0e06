package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thestylist/booking-api/internal/booking"
	"github.com/thestylist/booking-api/internal/config"
	"github.com/thestylist/booking-api/internal/payment"
	"github.com/thestylist/booking-api/internal/repository"
)

// PaymentHandler exposes the deposit flow. Deposits are advisory: an
// appointment is booked whether or not one is paid, and a verified
// payment only annotates the record with the provider's reference.
// Providers are optional; an unconfigured one answers 501.
type PaymentHandler struct {
	Cfg          config.Config
	Appointments *repository.AppointmentRepo
	Paystack     *payment.Paystack
	Stripe       *payment.Stripe
}

func NewPaymentHandler(cfg config.Config, a *repository.AppointmentRepo, paystack *payment.Paystack, stripe *payment.Stripe) *PaymentHandler {
	return &PaymentHandler{Cfg: cfg, Appointments: a, Paystack: paystack, Stripe: stripe}
}

type verifyReq struct {
	Provider  string `json:"provider"` // "paystack" or "stripe"
	Reference string `json:"reference"`
}

// StripeCheckout creates a Stripe Checkout session for the appointment's
// deposit and returns its hosted payment URL. The session ID doubles as
// the reference to verify later.
func (h *PaymentHandler) StripeCheckout(c echo.Context) error {
	if h.Stripe == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "stripe not configured"})
	}
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	detail, err := h.Appointments.GetByIDForUser(ctx, id, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load appointment failed"})
	}
	if detail.IsCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "appointment is cancelled"})
	}
	deposit := booking.DepositCents(detail.TotalPriceCents)
	if deposit == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to pay"})
	}

	sessID, url, err := h.Stripe.CreateCheckout(ctx, payment.CheckoutRequest{
		AppointmentID: id,
		UserID:        uid,
		AmountCents:   deposit,
		Currency:      "usd",
		Description:   fmt.Sprintf("Deposit for appointment on %s at %s", detail.Date, detail.StartTime),
		SuccessURL:    h.Cfg.FrontendURL + "/appointments/" + strconv.FormatUint(id, 10) + "?payment=success",
		CancelURL:     h.Cfg.FrontendURL + "/appointments/" + strconv.FormatUint(id, 10) + "?payment=cancelled",
	})
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "create checkout failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reference":     sessID,
		"checkout_url":  url,
		"deposit_cents": deposit,
	})
}

// PaystackInitialize starts a Paystack transaction for the deposit and
// returns the hosted authorization URL plus the reference to verify
// afterwards. The charge is made against the booking client's email.
func (h *PaymentHandler) PaystackInitialize(c echo.Context) error {
	if h.Paystack == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "paystack not configured"})
	}
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	detail, err := h.Appointments.GetByIDForUser(ctx, id, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load appointment failed"})
	}
	if detail.IsCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "appointment is cancelled"})
	}
	deposit := booking.DepositCents(detail.TotalPriceCents)
	if deposit == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to pay"})
	}

	callback := h.Cfg.FrontendURL + "/appointments/" + strconv.FormatUint(id, 10) + "?payment=callback"
	ref, authURL, err := h.Paystack.Initialize(ctx, detail.ClientEmail, deposit, callback)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "initialize payment failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reference":         ref,
		"authorization_url": authURL,
		"deposit_cents":     deposit,
	})
}

// Verify confirms a transaction reference with its provider and, on
// success, attaches it to the appointment. Re-verifying the same
// reference is idempotent.
func (h *PaymentHandler) Verify(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Reference = strings.TrimSpace(req.Reference)
	if req.Reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
	}

	var provider payment.Provider
	switch strings.ToLower(req.Provider) {
	case "paystack":
		if h.Paystack != nil {
			provider = h.Paystack
		}
	case "stripe":
		if h.Stripe != nil {
			provider = h.Stripe
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provider must be paystack or stripe"})
	}
	if provider == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": req.Provider + " not configured"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	paid, err := provider.Verify(ctx, req.Reference)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "verification failed"})
	}
	if !paid {
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment not completed"})
	}

	if err := h.Appointments.AttachPayment(ctx, id, uid, req.Reference); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record payment failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "payment verified",
		"reference": req.Reference,
	})
}
