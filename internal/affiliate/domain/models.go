package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrAccountNotFound     = errors.New("affiliate_account_not_found")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrCodeExhausted       = errors.New("referral_code_exhausted")
)

// Account is one affiliate ledger entry, keyed by referral code.
// QualifiedSales counts distinct referred users with a completed
// top-tier payment; it feeds the milestone bonus without rescanning
// the payment table.
type Account struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	Code             string       `gorm:"uniqueIndex;size:32" json:"code"`
	Email            string       `gorm:"uniqueIndex;size:255" json:"email"`
	Balance          float64      `json:"balance"`
	BonusTotal       float64      `json:"bonus_total"`
	QualifiedSales   int          `json:"qualified_sales"`
	MilestoneAwarded bool         `json:"milestone_awarded"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (Account) TableName() string {
	return "affiliate_accounts"
}

// Referral links a referred user to the code used at signup.
// Qualified latches true on the user's first completed Cinematic or
// Lifetime payment and is never reset.
type Referral struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Code          string       `gorm:"index;size:32" json:"code"`
	ReferredEmail string       `gorm:"index;size:255" json:"referred_email"`
	Qualified     bool         `json:"qualified"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (Referral) TableName() string {
	return "affiliate_referrals"
}

// Payout is an administrative debit against an account balance.
type Payout struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Code      string       `gorm:"index;size:32" json:"code"`
	Amount    float64      `json:"amount"`
	CreatedAt time.Time    `json:"created_at"`
}

func (Payout) TableName() string {
	return "affiliate_payouts"
}
