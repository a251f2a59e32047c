package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Account, error)
	FindByCodeForUpdate(ctx context.Context, db *gorm.DB, code string) (*Account, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Account, error)
	Update(ctx context.Context, db *gorm.DB, account *Account) error
	List(ctx context.Context, db *gorm.DB) ([]Account, error)

	InsertReferral(ctx context.Context, db *gorm.DB, referral *Referral) error
	FindReferral(ctx context.Context, db *gorm.DB, code, referredEmail string) (*Referral, error)
	MarkReferralQualified(ctx context.Context, db *gorm.DB, code, referredEmail string) error
	ListReferrals(ctx context.Context, db *gorm.DB, code string) ([]Referral, error)

	InsertPayout(ctx context.Context, db *gorm.DB, payout *Payout) error
	ListPayouts(ctx context.Context, db *gorm.DB, code string) ([]Payout, error)
}
