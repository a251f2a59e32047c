package webhook

import (
	"context"
	"net/http"
	"strings"

	"github.com/kairahstudio/kairah/internal/config"
	"github.com/kairahstudio/kairah/internal/payment/adapters"
	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log        *zap.Logger
	registry   *adapters.Registry
	cfg        config.Config
	paymentsvc paymentdomain.Service
}

type ServiceParam struct {
	fx.In

	Log        *zap.Logger
	Registry   *adapters.Registry
	Cfg        config.Config
	Paymentsvc paymentdomain.Service
}

func NewService(p ServiceParam) paymentdomain.WebhookService {
	return &Service{
		log:        p.Log.Named("payment.webhook"),
		registry:   p.Registry,
		cfg:        p.Cfg,
		paymentsvc: p.Paymentsvc,
	}
}

// Handle verifies, parses and confirms one provider delivery.
// Deliveries that do not represent a completed payment are
// acknowledged without touching the ledger.
func (s *Service) Handle(ctx context.Context, provider string, payload []byte, headers http.Header) (paymentdomain.ConfirmResult, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))

	secret, err := s.secretFor(provider)
	if err != nil {
		return paymentdomain.ConfirmResult{}, err
	}

	adapter, err := s.registry.NewAdapter(provider, paymentdomain.AdapterConfig{Secret: secret})
	if err != nil {
		return paymentdomain.ConfirmResult{}, err
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.log.Warn("webhook signature rejected", zap.String("provider", provider))
		return paymentdomain.ConfirmResult{}, err
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		return paymentdomain.ConfirmResult{}, err
	}

	if !event.Completed {
		s.log.Info("webhook ignored, payment not completed",
			zap.String("provider", provider),
			zap.String("payment_id", event.PaymentID),
		)
		return paymentdomain.ConfirmResult{}, nil
	}

	return s.paymentsvc.Confirm(ctx, paymentdomain.ConfirmRequest{
		PaymentID:    event.PaymentID,
		Email:        event.Email,
		Method:       provider,
		Amount:       event.Amount,
		Plan:         event.Plan,
		ReferralCode: event.ReferralCode,
	})
}

func (s *Service) secretFor(provider string) (string, error) {
	secrets := s.cfg.WebhookSecrets
	switch provider {
	case "stripe":
		return secrets.Stripe, nil
	case "paystack":
		return secrets.Paystack, nil
	case "paypal":
		return secrets.PayPal, nil
	case "mpesa":
		return secrets.Mpesa, nil
	case "wise":
		return secrets.Wise, nil
	default:
		return "", paymentdomain.ErrProviderNotFound
	}
}
