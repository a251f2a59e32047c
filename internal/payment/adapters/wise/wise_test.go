package wise

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

const testSecret = "wise_test_secret"

func signedHeaders(payload []byte, secret string) http.Header {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)

	headers := http.Header{}
	headers.Set("X-Signature-SHA256", hex.EncodeToString(mac.Sum(nil)))
	return headers
}

func newAdapter(t *testing.T) paymentdomain.PaymentAdapter {
	adapter, err := NewFactory().NewAdapter(paymentdomain.AdapterConfig{Secret: testSecret})
	require.NoError(t, err)
	return adapter
}

func TestVerifyRoundTrip(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{"event_type":"transfers#state-change"}`)

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

func TestParseOutgoingPaymentSent(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{
		"event_type": "transfers#state-change",
		"data": {
			"current_state": "outgoing_payment_sent",
			"resource": {
				"id": "tr_42",
				"payer_email": "carol@example.com",
				"amount": 500,
				"reference": {"plan": "Lifetime", "referral_code": "ALICE123"}
			}
		}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "tr_42", event.PaymentID)
	assert.Equal(t, "carol@example.com", event.Email)
	assert.InDelta(t, 500.0, event.Amount, 1e-9)
	assert.Equal(t, "Lifetime", event.Plan)
	assert.Equal(t, "ALICE123", event.ReferralCode)
	assert.True(t, event.Completed)
}

func TestParsePendingStateNotCompleted(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{
		"data": {
			"current_state": "processing",
			"resource": {"id": "tr_43", "amount": 19}
		}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, event.Completed)
}

func TestParseMissingResourceID(t *testing.T) {
	adapter := newAdapter(t)

	_, err := adapter.Parse(context.Background(), []byte(`{"data":{"resource":{}}}`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)
}
