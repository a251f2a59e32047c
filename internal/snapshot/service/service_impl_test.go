package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	affiliaterepository "github.com/kairahstudio/kairah/internal/affiliate/repository"
	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
	paymentrepository "github.com/kairahstudio/kairah/internal/payment/repository"
	snapshotdomain "github.com/kairahstudio/kairah/internal/snapshot/domain"
	userdomain "github.com/kairahstudio/kairah/internal/user/domain"
	userrepository "github.com/kairahstudio/kairah/internal/user/repository"
	videodomain "github.com/kairahstudio/kairah/internal/video/domain"
	videorepository "github.com/kairahstudio/kairah/internal/video/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&affiliatedomain.Account{},
		&affiliatedomain.Referral{},
		&affiliatedomain.Payout{},
		&paymentdomain.Payment{},
		&videodomain.Video{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) snapshotdomain.Service {
	return NewService(ServiceParam{
		DB:            db,
		Log:           zap.NewNop(),
		UserRepo:      userrepository.Provide(),
		AffiliateRepo: affiliaterepository.Provide(),
		VideoRepo:     videorepository.Provide(),
		PaymentRepo:   paymentrepository.Provide(),
	})
}

func seedLedger(t *testing.T, db *gorm.DB) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, db.Create(&userdomain.User{
		ID:              node.Generate(),
		Email:           "alice@example.com",
		DisplayName:     "Alice",
		Plan:            "Cinematic",
		ReferralCode:    "ALICE123",
		GeneratedVideos: 3,
		Downloads:       1,
		FameBoosterPaid: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}).Error)
	require.NoError(t, db.Create(&affiliatedomain.Account{
		ID:             node.Generate(),
		Code:           "ALICE123",
		Email:          "alice@example.com",
		Balance:        140.5,
		QualifiedSales: 2,
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error)
	require.NoError(t, db.Create(&affiliatedomain.Referral{
		ID:            node.Generate(),
		Code:          "ALICE123",
		ReferredEmail: "bob@example.com",
		Qualified:     true,
		CreatedAt:     now,
	}).Error)
	require.NoError(t, db.Create(&affiliatedomain.Payout{
		ID:        node.Generate(),
		Code:      "ALICE123",
		Amount:    25,
		CreatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&paymentdomain.Payment{
		ID:        node.Generate(),
		PaymentID: "pi_777",
		Email:     "bob@example.com",
		Method:    "stripe",
		Amount:    99,
		Plan:      "Cinematic",
		Status:    paymentdomain.StatusCompleted,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&videodomain.Video{
		ID:            node.Generate(),
		Email:         "alice@example.com",
		Prompt:        "city at dawn",
		URL:           "https://cdn.kairahstudio.com/videos/1.mp4",
		LengthSeconds: 180,
		AspectRatio:   "16:9",
		CreatedAt:     now,
	}).Error)
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := setupTestDB(t)
	seedLedger(t, src)
	srcSvc := newTestService(t, src)
	ctx := context.Background()

	doc, err := srcSvc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Users, 1)
	require.Len(t, doc.Affiliates, 1)
	require.Len(t, doc.Payments, 1)
	require.Len(t, doc.Videos, 1)

	dst := setupTestDB(t)
	dstSvc := newTestService(t, dst)
	require.NoError(t, dstSvc.Import(ctx, doc))

	restored, err := dstSvc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, restored)
}

func TestSnapshotImportReplacesExistingState(t *testing.T) {
	db := setupTestDB(t)
	seedLedger(t, db)
	svc := newTestService(t, db)
	ctx := context.Background()

	require.NoError(t, svc.Import(ctx, snapshotdomain.Document{}))

	doc, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Users)
	assert.Empty(t, doc.Affiliates)
	assert.Empty(t, doc.Payments)
	assert.Empty(t, doc.Videos)
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	src := setupTestDB(t)
	seedLedger(t, src)
	srcSvc := newTestService(t, src)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, srcSvc.SaveToFile(ctx, path))

	dst := setupTestDB(t)
	dstSvc := newTestService(t, dst)
	require.NoError(t, dstSvc.LoadFromFile(ctx, path))

	want, err := srcSvc.Export(ctx)
	require.NoError(t, err)
	got, err := dstSvc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
