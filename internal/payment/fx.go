package payment

import (
	"github.com/kairahstudio/kairah/internal/payment/adapters"
	"github.com/kairahstudio/kairah/internal/payment/adapters/mpesa"
	"github.com/kairahstudio/kairah/internal/payment/adapters/paypal"
	"github.com/kairahstudio/kairah/internal/payment/adapters/paystack"
	"github.com/kairahstudio/kairah/internal/payment/adapters/stripe"
	"github.com/kairahstudio/kairah/internal/payment/adapters/wise"
	"github.com/kairahstudio/kairah/internal/payment/repository"
	"github.com/kairahstudio/kairah/internal/payment/service"
	"github.com/kairahstudio/kairah/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(newRegistry),
	fx.Provide(webhook.NewService),
)

func newRegistry() *adapters.Registry {
	return adapters.NewRegistry(
		stripe.NewFactory(),
		paystack.NewFactory(),
		paypal.NewFactory(),
		mpesa.NewFactory(),
		wise.NewFactory(),
	)
}
