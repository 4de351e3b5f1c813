// Package payments talks to Stripe: payment intents over its REST API and
// signed webhook events.
package payments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Intent is the part of a Stripe PaymentIntent the store cares about.
type Intent struct {
	ID             string `json:"id"`
	ClientSecret   string `json:"client_secret"`
	Amount         int64  `json:"amount"`
	AmountReceived int64  `json:"amount_received"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
}

// Gateway creates a payment intent, or updates the amount of an existing one
// when intentID is not empty.
type Gateway interface {
	CreateOrUpdateIntent(ctx context.Context, intentID string, amount int64) (Intent, error)
}

// APIError is the error object Stripe returns with non-2xx responses.
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("stripe: status %d", e.StatusCode)
	}
	return fmt.Sprintf("stripe: %s (status %d)", e.Message, e.StatusCode)
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

type StripeClient struct {
	client   *resty.Client
	currency string
}

func NewStripeClient(baseURL, secretKey, currency string) *StripeClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(secretKey).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")
	return &StripeClient{client: client, currency: currency}
}

func (s *StripeClient) CreateOrUpdateIntent(ctx context.Context, intentID string, amount int64) (Intent, error) {
	form := map[string]string{
		"amount": strconv.FormatInt(amount, 10),
	}

	req := s.client.R().SetContext(ctx)
	path := "/v1/payment_intents"
	if intentID == "" {
		form["currency"] = s.currency
		form["payment_method_types[]"] = "card"
	} else {
		path = "/v1/payment_intents/{id}"
		req.SetPathParam("id", intentID)
	}

	var intent Intent
	var apiErr errorEnvelope
	resp, err := req.
		SetFormData(form).
		SetResult(&intent).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe payment intent: %w", err)
	}
	if resp.IsError() {
		apiErr.Error.StatusCode = resp.StatusCode()
		return Intent{}, &apiErr.Error
	}
	return intent, nil
}
