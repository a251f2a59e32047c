package repository

import (
	"context"

	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() affiliatedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *affiliatedomain.Account) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*affiliatedomain.Account, error) {
	var account affiliatedomain.Account
	err := db.WithContext(ctx).Where("code = ?", code).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindByCodeForUpdate takes a row lock so concurrent accruals and
// payouts serialize on the account. SQLite has no FOR UPDATE; its
// single-writer model covers the same guarantee.
func (r *repo) FindByCodeForUpdate(ctx context.Context, db *gorm.DB, code string) (*affiliatedomain.Account, error) {
	if db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.FindByCode(ctx, db, code)
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*affiliatedomain.Account, error) {
	var account affiliatedomain.Account
	err := db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, account *affiliatedomain.Account) error {
	return db.WithContext(ctx).Save(account).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]affiliatedomain.Account, error) {
	var accounts []affiliatedomain.Account
	if err := db.WithContext(ctx).Order("created_at asc").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repo) InsertReferral(ctx context.Context, db *gorm.DB, referral *affiliatedomain.Referral) error {
	return db.WithContext(ctx).Create(referral).Error
}

func (r *repo) FindReferral(ctx context.Context, db *gorm.DB, code, referredEmail string) (*affiliatedomain.Referral, error) {
	var referral affiliatedomain.Referral
	err := db.WithContext(ctx).
		Where("code = ? AND referred_email = ?", code, referredEmail).
		First(&referral).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

func (r *repo) MarkReferralQualified(ctx context.Context, db *gorm.DB, code, referredEmail string) error {
	return db.WithContext(ctx).
		Model(&affiliatedomain.Referral{}).
		Where("code = ? AND referred_email = ?", code, referredEmail).
		Update("qualified", true).Error
}

func (r *repo) ListReferrals(ctx context.Context, db *gorm.DB, code string) ([]affiliatedomain.Referral, error) {
	var referrals []affiliatedomain.Referral
	err := db.WithContext(ctx).
		Where("code = ?", code).
		Order("created_at asc").
		Find(&referrals).Error
	if err != nil {
		return nil, err
	}
	return referrals, nil
}

func (r *repo) InsertPayout(ctx context.Context, db *gorm.DB, payout *affiliatedomain.Payout) error {
	return db.WithContext(ctx).Create(payout).Error
}

func (r *repo) ListPayouts(ctx context.Context, db *gorm.DB, code string) ([]affiliatedomain.Payout, error) {
	var payouts []affiliatedomain.Payout
	err := db.WithContext(ctx).
		Where("code = ?", code).
		Order("created_at asc").
		Find(&payouts).Error
	if err != nil {
		return nil, err
	}
	return payouts, nil
}
