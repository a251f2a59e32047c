package paypal

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "paypal"
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

// Verify checks a shared-secret HMAC carried in
// Paypal-Transmission-Sig. Certificate-chain verification against the
// PayPal API is left to the edge proxy.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	signature := strings.TrimSpace(headers.Get("Paypal-Transmission-Sig"))
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
	var event paypalEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.Resource.ID) == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(event.Resource.Amount.Value), 64)
	if err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	plan, referralCode := parseCustomID(event.Resource.CustomID)

	return &paymentdomain.PaymentEvent{
		PaymentID:    event.Resource.ID,
		Email:        event.Resource.Payer.EmailAddress,
		Amount:       amount,
		Plan:         plan,
		ReferralCode: referralCode,
		Completed:    strings.TrimSpace(event.EventType) == "PAYMENT.CAPTURE.COMPLETED",
	}, nil
}

// parseCustomID splits the checkout custom_id field, set by the
// frontend as "<plan>" or "<plan>|<referral_code>".
func parseCustomID(customID string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(customID), "|", 2)
	plan := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return plan, ""
	}
	return plan, strings.TrimSpace(parts[1])
}

type paypalEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID     string `json:"id"`
		Amount struct {
			Value string `json:"value"`
		} `json:"amount"`
		Payer struct {
			EmailAddress string `json:"email_address"`
		} `json:"payer"`
		CustomID string `json:"custom_id"`
	} `json:"resource"`
}
