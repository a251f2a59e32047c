package repository

import (
	"context"

	userdomain "github.com/kairahstudio/kairah/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() userdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *userdomain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*userdomain.User, error) {
	var user userdomain.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByReferralCode(ctx context.Context, db *gorm.DB, code string) (*userdomain.User, error) {
	var user userdomain.User
	err := db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) UpdatePlan(ctx context.Context, db *gorm.DB, email, plan string) error {
	return db.WithContext(ctx).
		Model(&userdomain.User{}).
		Where("email = ?", email).
		Update("plan", plan).Error
}

func (r *repo) SetFameBoosterPaid(ctx context.Context, db *gorm.DB, email string) error {
	return db.WithContext(ctx).
		Model(&userdomain.User{}).
		Where("email = ?", email).
		Update("fame_booster_paid", true).Error
}

func (r *repo) IncrementGeneratedVideos(ctx context.Context, db *gorm.DB, email string) error {
	return db.WithContext(ctx).
		Model(&userdomain.User{}).
		Where("email = ?", email).
		UpdateColumn("generated_videos", gorm.Expr("generated_videos + 1")).Error
}

// IncrementGeneratedVideosBelow bumps the counter only while it is
// under limit, in one statement. Zero rows affected means the quota
// latch is already taken; concurrent callers serialize on the row.
func (r *repo) IncrementGeneratedVideosBelow(ctx context.Context, db *gorm.DB, email string, limit int) (bool, error) {
	res := db.WithContext(ctx).
		Model(&userdomain.User{}).
		Where("email = ? AND generated_videos < ?", email, limit).
		UpdateColumn("generated_videos", gorm.Expr("generated_videos + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) IncrementDownloads(ctx context.Context, db *gorm.DB, email string) error {
	return db.WithContext(ctx).
		Model(&userdomain.User{}).
		Where("email = ?", email).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error
}

func (r *repo) IncrementDownloadsBelow(ctx context.Context, db *gorm.DB, email string, limit int) (bool, error) {
	res := db.WithContext(ctx).
		Model(&userdomain.User{}).
		Where("email = ? AND downloads < ?", email, limit).
		UpdateColumn("downloads", gorm.Expr("downloads + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]userdomain.User, error) {
	var users []userdomain.User
	if err := db.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
