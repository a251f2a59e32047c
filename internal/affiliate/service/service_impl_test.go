package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	"github.com/kairahstudio/kairah/internal/affiliate/repository"
	"github.com/kairahstudio/kairah/internal/clock"
	"github.com/kairahstudio/kairah/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&affiliatedomain.Account{},
		&affiliatedomain.Referral{},
		&affiliatedomain.Payout{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clock.NewFakeClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)),
		Repo:    repository.Provide(),
		Billing: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})
	return svc.(*Service)
}

func TestProvisionIdempotentPerEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	first, err := svc.ProvisionTx(ctx, db, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, first.Code)

	second, err := svc.ProvisionTx(ctx, db, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)

	var count int64
	require.NoError(t, db.Model(&affiliatedomain.Account{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAccrueCreditsCommission(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	account, err := svc.ProvisionTx(ctx, db, "alice@example.com")
	require.NoError(t, err)

	result, err := svc.AccrueTx(ctx, db, affiliatedomain.AccrueRequest{
		Code:       account.Code,
		SaleAmount: 100.0,
		Plan:       "Pro",
		PayerEmail: "buyer@example.com",
	})
	require.NoError(t, err)
	assert.InDelta(t, 70.0, result.Commission, 1e-9)
	assert.InDelta(t, 70.0, result.Balance, 1e-9)
	assert.False(t, result.BonusAwarded)
}

func TestAccrueUnknownCodeCreatesNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	result, err := svc.AccrueTx(ctx, db, affiliatedomain.AccrueRequest{
		Code:       "NOPE1234",
		SaleAmount: 100.0,
		Plan:       "Pro",
		PayerEmail: "buyer@example.com",
	})
	require.NoError(t, err)
	assert.True(t, result.MissingCode)
	assert.Zero(t, result.Commission)

	var count int64
	require.NoError(t, db.Model(&affiliatedomain.Account{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMilestoneBonusAwardedOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	account, err := svc.ProvisionTx(ctx, db, "alice@example.com")
	require.NoError(t, err)

	bonuses := 0
	for i := 0; i < 101; i++ {
		buyer := fmt.Sprintf("buyer%03d@example.com", i)
		require.NoError(t, svc.LinkReferralTx(ctx, db, account.Code, buyer))

		result, err := svc.AccrueTx(ctx, db, affiliatedomain.AccrueRequest{
			Code:       account.Code,
			SaleAmount: 99.0,
			Plan:       "Cinematic",
			PayerEmail: buyer,
		})
		require.NoError(t, err)
		if result.BonusAwarded {
			bonuses++
			assert.Equal(t, 100, i+1)
			assert.InDelta(t, 500.0, result.BonusAmount, 1e-9)
		}
	}
	assert.Equal(t, 1, bonuses)

	stored, err := svc.GetEarnings(ctx, account.Code)
	require.NoError(t, err)
	assert.True(t, stored.MilestoneAwarded)
	assert.Equal(t, 101, stored.QualifiedSales)
	assert.InDelta(t, 101*99.0*0.70+500.0, stored.Balance, 1e-6)
}

func TestRepeatPaymentsBySameReferredUserCountOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	account, err := svc.ProvisionTx(ctx, db, "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.LinkReferralTx(ctx, db, account.Code, "buyer@example.com"))

	for i := 0; i < 3; i++ {
		_, err := svc.AccrueTx(ctx, db, affiliatedomain.AccrueRequest{
			Code:       account.Code,
			SaleAmount: 500.0,
			Plan:       "Lifetime",
			PayerEmail: "buyer@example.com",
		})
		require.NoError(t, err)
	}

	stored, err := svc.GetEarnings(ctx, account.Code)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.QualifiedSales)
	assert.False(t, stored.MilestoneAwarded)
}

func TestPayoutInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	account, err := svc.ProvisionTx(ctx, db, "alice@example.com")
	require.NoError(t, err)

	_, err = svc.AccrueTx(ctx, db, affiliatedomain.AccrueRequest{
		Code:       account.Code,
		SaleAmount: 100.0,
		Plan:       "Pro",
		PayerEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Payout(ctx, affiliatedomain.PayoutRequest{Code: account.Code, Amount: 1000.0})
	assert.ErrorIs(t, err, affiliatedomain.ErrInsufficientBalance)

	stored, err := svc.GetEarnings(ctx, account.Code)
	require.NoError(t, err)
	assert.InDelta(t, 70.0, stored.Balance, 1e-9)
}

func TestPayoutDebitsBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	account, err := svc.ProvisionTx(ctx, db, "alice@example.com")
	require.NoError(t, err)

	_, err = svc.AccrueTx(ctx, db, affiliatedomain.AccrueRequest{
		Code:       account.Code,
		SaleAmount: 100.0,
		Plan:       "Pro",
		PayerEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	payout, err := svc.Payout(ctx, affiliatedomain.PayoutRequest{Code: account.Code, Amount: 50.0})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, payout.Amount, 1e-9)

	stored, err := svc.GetEarnings(ctx, account.Code)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, stored.Balance, 1e-9)
	require.Len(t, stored.Payouts, 1)
}
