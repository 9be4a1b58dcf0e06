package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const paystackBaseURL = "https://api.paystack.co"

// Paystack verifies transactions against the Paystack REST API.
type Paystack struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewPaystack returns a Paystack provider using the given secret key.
func NewPaystack(secretKey string) *Paystack {
	return &Paystack{
		secretKey: secretKey,
		baseURL:   paystackBaseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type paystackInitRequest struct {
	Email     string `json:"email"`
	Amount    int64  `json:"amount"` // subunits (kobo/cents)
	Reference string `json:"reference,omitempty"`
	Callback  string `json:"callback_url,omitempty"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// Initialize starts a Paystack transaction for the given amount and
// returns the hosted authorization URL plus the reference to verify
// once the client completes payment.
func (p *Paystack) Initialize(ctx context.Context, email string, amountCents uint32, callbackURL string) (reference, authorizationURL string, err error) {
	payload, err := json.Marshal(paystackInitRequest{
		Email:    email,
		Amount:   int64(amountCents),
		Callback: callbackURL,
	})
	if err != nil {
		return "", "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("paystack initialize: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("paystack initialize: unexpected status %d", resp.StatusCode)
	}
	var body paystackInitResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("paystack initialize: decode response: %w", err)
	}
	if !body.Status {
		return "", "", fmt.Errorf("paystack initialize: %s", body.Message)
	}
	return body.Data.Reference, body.Data.AuthorizationURL, nil
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"`
		Amount int64  `json:"amount"`
	} `json:"data"`
}

// Verify calls GET /transaction/verify/{reference} and reports whether
// the charge succeeded.
func (p *Paystack) Verify(ctx context.Context, reference string) (bool, error) {
	endpoint := p.baseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("paystack verify: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, fmt.Errorf("paystack verify: unknown reference %q", reference)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("paystack verify: unexpected status %d", resp.StatusCode)
	}
	var body paystackVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("paystack verify: decode response: %w", err)
	}
	if !body.Status {
		return false, fmt.Errorf("paystack verify: %s", body.Message)
	}
	return body.Data.Status == "success", nil
}
