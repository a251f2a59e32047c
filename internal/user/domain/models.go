package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrUserAlreadyExists = errors.New("user_already_exists")
	ErrUserNotFound      = errors.New("user_not_found")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidPlan       = errors.New("invalid_plan")
)

// User holds identity, plan and usage state. Email is stored
// case-normalized and is the external identity key.
type User struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Email           string       `gorm:"uniqueIndex;size:255" json:"email"`
	DisplayName     string       `gorm:"size:255" json:"display_name"`
	Plan            string       `gorm:"size:32" json:"plan"`
	ReferralCode    string       `gorm:"uniqueIndex;size:32" json:"referral_code"`
	ReferredBy      string       `gorm:"size:32" json:"referred_by,omitempty"`
	GeneratedVideos int          `json:"generated_videos"`
	Downloads       int          `json:"downloads"`
	FameBoosterPaid bool         `json:"fame_booster_paid"`
	IsAdmin         bool         `json:"is_admin"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
