package payments

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testSecret = "whsec_test"

var succeededPayload = []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent","amount":1500,"amount_received":1500,"status":"succeeded"}}}`)

func TestConstructEventValid(t *testing.T) {
	header := SignatureHeader(succeededPayload, testSecret, time.Now())

	event, err := ConstructEvent(succeededPayload, header, testSecret, DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventPaymentSucceeded, event.Type)

	intent, err := event.PaymentIntent()
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, int64(1500), intent.AmountReceived)
}

func TestConstructEventRejects(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"empty header", "", nil},
		{"missing v1", fmt.Sprintf("t=%d", now.Unix()), nil},
		{"bad timestamp", "t=abc,v1=00", nil},
		{"wrong secret", SignatureHeader(succeededPayload, "other", now), webhook.ErrNoValidSignature},
		{"stale", SignatureHeader(succeededPayload, testSecret, now.Add(-10*time.Minute)), webhook.ErrTooOld},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConstructEvent(succeededPayload, tt.header, testSecret, DefaultTolerance)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSignature)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

// Stripe only bounds the age of a delivery; clock skew ahead of the server
// is accepted.
func TestConstructEventAcceptsFutureTimestamp(t *testing.T) {
	header := SignatureHeader(succeededPayload, testSecret, time.Now().Add(10*time.Minute))

	_, err := ConstructEvent(succeededPayload, header, testSecret, DefaultTolerance)
	assert.NoError(t, err)
}

func TestConstructEventTamperedPayload(t *testing.T) {
	header := SignatureHeader(succeededPayload, testSecret, time.Now())
	tampered := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","amount":1}}}`)

	_, err := ConstructEvent(tampered, header, testSecret, DefaultTolerance)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEventAcceptsAnyMatchingSignature(t *testing.T) {
	now := time.Now()
	valid := SignatureHeader(succeededPayload, testSecret, now)
	_, v1, _ := strings.Cut(valid, ",")
	header := fmt.Sprintf("t=%d,v1=deadbeef,%s", now.Unix(), v1)

	_, err := ConstructEvent(succeededPayload, header, testSecret, DefaultTolerance)
	assert.NoError(t, err)
}

func TestPaymentIntentRejectsOtherObjects(t *testing.T) {
	event := Event{ID: "evt_2", Type: "customer.created"}
	event.Data.Object = []byte(`{"object":"customer"}`)

	_, err := event.PaymentIntent()
	assert.ErrorIs(t, err, ErrUnexpectedPayload)
}
