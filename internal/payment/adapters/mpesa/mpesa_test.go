package mpesa

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

const testSecret = "mpesa_test_secret"

func signedHeaders(payload []byte, secret string) http.Header {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)

	headers := http.Header{}
	headers.Set("X-Mpesa-Signature", hex.EncodeToString(mac.Sum(nil)))
	return headers
}

func newAdapter(t *testing.T) paymentdomain.PaymentAdapter {
	adapter, err := NewFactory().NewAdapter(paymentdomain.AdapterConfig{Secret: testSecret})
	require.NoError(t, err)
	return adapter
}

func TestVerifyRoundTrip(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{"Body":{"stkCallback":{}}}`)

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

func TestParseSuccessfulStkCallback(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{
		"Body": {
			"stkCallback": {
				"CheckoutRequestID": "ws_CO_123",
				"ResultCode": 0,
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 49},
						{"Name": "AccountReference", "Value": "eve@example.com:Diamond:ALICE123"}
					]
				}
			}
		}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_123", event.PaymentID)
	assert.Equal(t, "eve@example.com", event.Email)
	assert.InDelta(t, 49.0, event.Amount, 1e-9)
	assert.Equal(t, "Diamond", event.Plan)
	assert.Equal(t, "ALICE123", event.ReferralCode)
	assert.True(t, event.Completed)
}

func TestParseAccountReferenceWithoutCode(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{
		"Body": {
			"stkCallback": {
				"CheckoutRequestID": "ws_CO_124",
				"ResultCode": 0,
				"CallbackMetadata": {
					"Item": [{"Name": "AccountReference", "Value": "eve@example.com:Pro"}]
				}
			}
		}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "eve@example.com", event.Email)
	assert.Equal(t, "Pro", event.Plan)
	assert.Empty(t, event.ReferralCode)
}

func TestParseCancelledStkNotCompleted(t *testing.T) {
	adapter := newAdapter(t)
	payload := []byte(`{
		"Body": {
			"stkCallback": {"CheckoutRequestID": "ws_CO_125", "ResultCode": 1032}
		}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, event.Completed)
}

func TestParseMissingCheckoutRequestID(t *testing.T) {
	adapter := newAdapter(t)

	_, err := adapter.Parse(context.Background(), []byte(`{"Body":{"stkCallback":{}}}`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)
}
