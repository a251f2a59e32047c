package paypal

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "paypal_test_secret"

func signedHeaders(payload []byte, secret string) http.Header {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)

	headers := http.Header{}
	headers.Set("Paypal-Transmission-Sig", hex.EncodeToString(mac.Sum(nil)))
	return headers
}

func newAdapter(t *testing.T) paymentdomain.PaymentAdapter {
	adapter, err := NewFactory().NewAdapter(paymentdomain.AdapterConfig{Secret: testSecret})
	require.NoError(t, err)
	return adapter
}

func TestVerifyRoundTrip(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{"event_type":"PAYMENT.CAPTURE.COMPLETED"}`)

	assert.NoError(t, adapter.Verify(context.Background(), payload, signedHeaders(payload, testSecret)))
	assert.ErrorIs(t,
		adapter.Verify(context.Background(), payload, signedHeaders(payload, "wrong")),
		paymentdomain.ErrInvalidSignature,
	)
	assert.ErrorIs(t,
		adapter.Verify(context.Background(), payload, http.Header{}),
		paymentdomain.ErrInvalidSignature,
	)
}

func TestParseCaptureCompleted(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{
		"id": "WH-1",
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": {
			"id": "cap_77",
			"amount": {"value": "99.00"},
			"payer": {"email_address": "dave@example.com"},
			"custom_id": "Cinematic|ALICE123"
		}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "cap_77", event.PaymentID)
	assert.Equal(t, "dave@example.com", event.Email)
	assert.InDelta(t, 99.0, event.Amount, 1e-9)
	assert.Equal(t, "Cinematic", event.Plan)
	assert.Equal(t, "ALICE123", event.ReferralCode)
	assert.True(t, event.Completed)
}

func TestParseCustomIDWithoutReferral(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": {
			"id": "cap_78",
			"amount": {"value": "19.00"},
			"custom_id": "Pro"
		}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "Pro", event.Plan)
	assert.Empty(t, event.ReferralCode)
}

func TestParseDeniedCaptureNotCompleted(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{
		"event_type": "PAYMENT.CAPTURE.DENIED",
		"resource": {"id": "cap_79", "amount": {"value": "19.00"}}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, event.Completed)
}

func TestParseRejectsBadAmountAndMissingID(t *testing.T) {
	adapter := newAdapter(t)

	_, err := adapter.Parse(context.Background(), []byte(`{"resource":{"id":"cap_80","amount":{"value":"not-a-number"}}}`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)

	_, err = adapter.Parse(context.Background(), []byte(`{"resource":{"amount":{"value":"19.00"}}}`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)
}
