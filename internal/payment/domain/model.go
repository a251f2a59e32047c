package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidPayment   = errors.New("invalid_payment")
	ErrPaymentConflict  = errors.New("payment_conflict")
	ErrProviderNotFound = errors.New("unknown_payment_provider")
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
	ErrInvalidPayload   = errors.New("invalid_webhook_payload")
	ErrInvalidConfig    = errors.New("invalid_adapter_config")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const MethodFameBooster = "fame-booster"

// Payment is one confirmed payment event. PaymentID is the provider's
// idempotency key; replays with the same id never mutate state twice.
type Payment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	PaymentID string       `gorm:"uniqueIndex;size:128" json:"payment_id"`
	Email     string       `gorm:"index;size:255" json:"email"`
	Method    string       `gorm:"size:32" json:"method"`
	Amount    float64      `json:"amount"`
	Plan      string       `gorm:"size:32" json:"plan,omitempty"`
	Status    Status       `gorm:"size:16" json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
