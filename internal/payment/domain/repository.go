package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByPaymentID(ctx context.Context, db *gorm.DB, paymentID string) (*Payment, error)
	List(ctx context.Context, db *gorm.DB) ([]Payment, error)
	ListByEmail(ctx context.Context, db *gorm.DB, email string) ([]Payment, error)
}
