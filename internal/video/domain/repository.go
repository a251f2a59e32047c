package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, video *Video) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Video, error)
	List(ctx context.Context, db *gorm.DB) ([]Video, error)
	ListByEmail(ctx context.Context, db *gorm.DB, email string) ([]Video, error)
}
