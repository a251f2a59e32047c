package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"testing"

	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "sk_test_secret"

func signedHeaders(payload []byte, secret string) http.Header {
	mac := hmac.New(sha512.New, []byte(secret))
	_, _ = mac.Write(payload)

	headers := http.Header{}
	headers.Set("x-paystack-signature", hex.EncodeToString(mac.Sum(nil)))
	return headers
}

func newAdapter(t *testing.T) paymentdomain.PaymentAdapter {
	adapter, err := NewFactory().NewAdapter(paymentdomain.AdapterConfig{Secret: testSecret})
	require.NoError(t, err)
	return adapter
}

func TestVerifyRoundTrip(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{"event":"charge.success"}`)

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

func TestParseChargeSuccess(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "ref_789",
			"amount": 990000,
			"customer": {"email": "bob@example.com"},
			"metadata": {"plan": "Cinematic", "referral_code": "ALICE123"}
		}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "ref_789", event.PaymentID)
	assert.Equal(t, "bob@example.com", event.Email)
	assert.InDelta(t, 9900.0, event.Amount, 1e-9)
	assert.Equal(t, "Cinematic", event.Plan)
	assert.True(t, event.Completed)
}

func TestParseMissingReference(t *testing.T) {
	adapter := newAdapter(t)

	_, err := adapter.Parse(context.Background(), []byte(`{"event":"charge.success","data":{}}`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)
}
