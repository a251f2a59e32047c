package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindByReferralCode(ctx context.Context, db *gorm.DB, code string) (*User, error)
	UpdatePlan(ctx context.Context, db *gorm.DB, email, plan string) error
	SetFameBoosterPaid(ctx context.Context, db *gorm.DB, email string) error
	IncrementGeneratedVideos(ctx context.Context, db *gorm.DB, email string) error
	IncrementGeneratedVideosBelow(ctx context.Context, db *gorm.DB, email string, limit int) (bool, error)
	IncrementDownloads(ctx context.Context, db *gorm.DB, email string) error
	IncrementDownloadsBelow(ctx context.Context, db *gorm.DB, email string, limit int) (bool, error)
	List(ctx context.Context, db *gorm.DB) ([]User, error)
}
