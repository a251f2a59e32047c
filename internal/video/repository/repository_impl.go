package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	videodomain "github.com/kairahstudio/kairah/internal/video/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() videodomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, video *videodomain.Video) error {
	return db.WithContext(ctx).Create(video).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*videodomain.Video, error) {
	var video videodomain.Video
	err := db.WithContext(ctx).Where("id = ?", id).First(&video).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &video, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]videodomain.Video, error) {
	var videos []videodomain.Video
	if err := db.WithContext(ctx).Order("created_at asc").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *repo) ListByEmail(ctx context.Context, db *gorm.DB, email string) ([]videodomain.Video, error) {
	var videos []videodomain.Video
	err := db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at asc").
		Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}
