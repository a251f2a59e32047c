package mpesa

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "mpesa"
}

func (f *Factory) NewAdapter(cfg paymentdomain.AdapterConfig) (paymentdomain.PaymentAdapter, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	return &Adapter{secret: secret}, nil
}

type Adapter struct {
	secret string
}

// Verify checks X-Mpesa-Signature, an HMAC set by the Daraja-facing
// gateway that terminates the raw STK callback.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	signature := strings.TrimSpace(headers.Get("X-Mpesa-Signature"))
	if signature == "" {
		return paymentdomain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(a.secret))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.PaymentEvent, error) {
	var callback mpesaCallback
	if err := json.Unmarshal(payload, &callback); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	stk := callback.Body.StkCallback
	if strings.TrimSpace(stk.CheckoutRequestID) == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}

	event := &paymentdomain.PaymentEvent{
		PaymentID: stk.CheckoutRequestID,
		Completed: stk.ResultCode == 0,
	}
	for _, item := range stk.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			if amount, ok := item.Value.(float64); ok {
				event.Amount = amount
			}
		case "AccountReference":
			if ref, ok := item.Value.(string); ok {
				event.Email, event.Plan, event.ReferralCode = parseAccountReference(ref)
			}
		}
	}
	return event, nil
}

// parseAccountReference splits the STK account reference, set at
// checkout as "<email>:<plan>" or "<email>:<plan>:<referral_code>".
func parseAccountReference(ref string) (string, string, string) {
	parts := strings.SplitN(strings.TrimSpace(ref), ":", 3)
	email := strings.TrimSpace(parts[0])
	plan := ""
	code := ""
	if len(parts) > 1 {
		plan = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		code = strings.TrimSpace(parts[2])
	}
	return email, plan, code
}

type mpesaCallback struct {
	Body struct {
		StkCallback struct {
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}
