package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
)

// Stripe verifies deposits paid through Stripe Checkout. The reference
// handled by this provider is the checkout session ID.
type Stripe struct {
	secretKey string
}

// NewStripe returns a Stripe provider using the given secret key.
func NewStripe(secretKey string) *Stripe {
	return &Stripe{secretKey: secretKey}
}

// CheckoutRequest describes the deposit to collect.
type CheckoutRequest struct {
	AppointmentID uint64
	UserID        uint64
	AmountCents   uint32
	Currency      string
	Description   string
	SuccessURL    string
	CancelURL     string
}

// CreateCheckout creates a one-off Stripe Checkout session for the
// deposit and returns its ID and hosted payment URL.
func (s *Stripe) CreateCheckout(_ context.Context, req CheckoutRequest) (id, url string, err error) {
	stripe.Key = s.secretKey
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(strconv.FormatUint(req.AppointmentID, 10)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(int64(req.AmountCents)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"appointment_id": strconv.FormatUint(req.AppointmentID, 10),
			"user_id":        strconv.FormatUint(req.UserID, 10),
		},
	}
	params.AddExpand("url")
	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe checkout create: %w", err)
	}
	return sess.ID, sess.URL, nil
}

// Verify fetches the checkout session and reports whether its payment
// has completed.
func (s *Stripe) Verify(_ context.Context, reference string) (bool, error) {
	stripe.Key = s.secretKey
	sess, err := checkoutsession.Get(reference, nil)
	if err != nil {
		return false, fmt.Errorf("stripe checkout get: %w", err)
	}
	return sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}
