package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrVideoNotFound         = errors.New("video_not_found")
	ErrInvalidAspectRatio    = errors.New("invalid_aspect_ratio")
	ErrClipLengthExceeded    = errors.New("clip_length_exceeded")
	ErrPremiumRequired       = errors.New("premium_required")
	ErrVideoQuotaExceeded    = errors.New("video_quota_exceeded")
	ErrDownloadQuotaExceeded = errors.New("download_quota_exceeded")
	ErrGenerationBusy        = errors.New("generation_in_progress")
)

// Video is one generated artifact. Rows are append-only.
type Video struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Email         string       `gorm:"index;size:255" json:"email"`
	Prompt        string       `gorm:"type:text" json:"prompt"`
	URL           string       `gorm:"size:512" json:"url"`
	LengthSeconds int          `json:"length_seconds"`
	AspectRatio   string       `gorm:"size:8" json:"aspect_ratio"`
	FameBooster   bool         `json:"fame_booster"`
	TemplateID    string       `gorm:"size:64" json:"template_id,omitempty"`
	MusicID       string       `gorm:"size:64" json:"music_id,omitempty"`
	Fallback      bool         `json:"fallback"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (Video) TableName() string {
	return "videos"
}
