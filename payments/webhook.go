package payments

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"

	DefaultTolerance = webhook.DefaultTolerance
)

var (
	ErrInvalidSignature  = errors.New("webhook: invalid signature")
	ErrUnexpectedPayload = errors.New("webhook: event object is not a payment intent")

	signatureErrors = []error{
		webhook.ErrNotSigned,
		webhook.ErrInvalidHeader,
		webhook.ErrNoValidSignature,
		webhook.ErrTooOld,
	}
)

type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// PaymentIntent decodes data.object of a payment_intent.* event.
func (e Event) PaymentIntent() (Intent, error) {
	var intent Intent
	if err := json.Unmarshal(e.Data.Object, &intent); err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	if intent.ID == "" {
		return Intent{}, ErrUnexpectedPayload
	}
	return intent, nil
}

// ConstructEvent verifies the Stripe-Signature header against payload and
// decodes the event. Signature failures wrap ErrInvalidSignature together
// with the webhook package error (webhook.ErrTooOld and so on).
func ConstructEvent(payload []byte, header, secret string, tolerance time.Duration) (Event, error) {
	// only payment intent fields are read, so the account API version does
	// not need to match the library's
	se, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		for _, sigErr := range signatureErrors {
			if errors.Is(err, sigErr) {
				return Event{}, errors.Join(ErrInvalidSignature, err)
			}
		}
		return Event{}, fmt.Errorf("webhook: decode event: %w", err)
	}

	event := Event{ID: se.ID, Type: string(se.Type)}
	if se.Data != nil {
		event.Data.Object = se.Data.Raw
	}
	return event, nil
}

// SignatureHeader builds a Stripe-Signature header for payload, the way
// Stripe signs webhook deliveries.
func SignatureHeader(payload []byte, secret string, t time.Time) string {
	sig := webhook.ComputeSignature(t, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", t.Unix(), hex.EncodeToString(sig))
}
