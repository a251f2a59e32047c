package wise

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
	return "wise"
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

func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	signature := strings.TrimSpace(headers.Get("X-Signature-SHA256"))
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
	var event wiseEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.Data.Resource.ID) == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}

	return &paymentdomain.PaymentEvent{
		PaymentID:    event.Data.Resource.ID,
		Email:        event.Data.Resource.PayerEmail,
		Amount:       event.Data.Resource.Amount,
		Plan:         event.Data.Resource.Reference.Plan,
		ReferralCode: event.Data.Resource.Reference.ReferralCode,
		Completed:    strings.TrimSpace(event.Data.CurrentState) == "outgoing_payment_sent",
	}, nil
}

type wiseEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		CurrentState string `json:"current_state"`
		Resource     struct {
			ID         string  `json:"id"`
			PayerEmail string  `json:"payer_email"`
			Amount     float64 `json:"amount"`
			Reference  struct {
				Plan         string `json:"plan"`
				ReferralCode string `json:"referral_code"`
			} `json:"reference"`
		} `json:"resource"`
	} `json:"data"`
}
