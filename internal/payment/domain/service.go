package domain

import (
	"context"
	"net/http"

	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
)

type ConfirmRequest struct {
	PaymentID    string  `json:"payment_id" binding:"required"`
	Email        string  `json:"email" binding:"required"`
	Method       string  `json:"method" binding:"required"`
	Amount       float64 `json:"amount"`
	Plan         string  `json:"plan"`
	ReferralCode string  `json:"referral_code"`
}

type ConfirmResult struct {
	Payment    Payment                      `json:"payment"`
	Replayed   bool                         `json:"replayed"`
	Commission affiliatedomain.AccrueResult `json:"commission"`
}

type Service interface {
	Confirm(ctx context.Context, req ConfirmRequest) (ConfirmResult, error)
	List(ctx context.Context) ([]Payment, error)
	ListByEmail(ctx context.Context, email string) ([]Payment, error)
}

// PaymentEvent is the provider-neutral form a webhook adapter
// normalizes its payload into.
type PaymentEvent struct {
	PaymentID    string
	Email        string
	Amount       float64
	Plan         string
	ReferralCode string
	Completed    bool
}

// PaymentAdapter verifies and parses one provider's webhook payloads.
type PaymentAdapter interface {
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*PaymentEvent, error)
}

// AdapterConfig carries provider credentials from configuration.
type AdapterConfig struct {
	Secret string
}

// AdapterFactory builds adapters for one provider name.
type AdapterFactory interface {
	Provider() string
	NewAdapter(cfg AdapterConfig) (PaymentAdapter, error)
}

// WebhookService handles raw provider deliveries end to end.
type WebhookService interface {
	Handle(ctx context.Context, provider string, payload []byte, headers http.Header) (ConfirmResult, error)
}
