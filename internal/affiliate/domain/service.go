package domain

import (
	"context"

	"gorm.io/gorm"
)

type AccrueRequest struct {
	Code       string
	SaleAmount float64
	Plan       string
	PayerEmail string
}

type AccrueResult struct {
	Commission    float64 `json:"commission"`
	BonusAwarded  bool    `json:"bonus_awarded"`
	BonusAmount   float64 `json:"bonus_amount"`
	Balance       float64 `json:"balance"`
	MissingCode   bool    `json:"-"`
	QualifiedSale bool    `json:"-"`
}

type PayoutRequest struct {
	Code   string  `json:"code" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

type Earnings struct {
	Code             string     `json:"code"`
	Email            string     `json:"email"`
	Balance          float64    `json:"balance"`
	BonusTotal       float64    `json:"bonus_total"`
	QualifiedSales   int        `json:"qualified_sales"`
	MilestoneAwarded bool       `json:"milestone_awarded"`
	Referred         []Referral `json:"referred"`
	Payouts          []Payout   `json:"payouts"`
}

type Service interface {
	// ProvisionTx creates an account with a collision-checked code
	// inside the caller's transaction. Idempotent per email.
	ProvisionTx(ctx context.Context, tx *gorm.DB, email string) (Account, error)

	// LinkReferralTx records that referredEmail signed up under code.
	// Unknown codes are ignored.
	LinkReferralTx(ctx context.Context, tx *gorm.DB, code, referredEmail string) error

	// AccrueTx credits commission for a completed sale and applies the
	// milestone bonus when the qualified-sale count crosses the
	// threshold. Unknown codes return a zero result, not an error.
	AccrueTx(ctx context.Context, tx *gorm.DB, req AccrueRequest) (AccrueResult, error)

	Payout(ctx context.Context, req PayoutRequest) (Payout, error)
	GetEarnings(ctx context.Context, code string) (Earnings, error)
	GetEarningsByEmail(ctx context.Context, email string) (Earnings, error)
	List(ctx context.Context) ([]Earnings, error)
}
