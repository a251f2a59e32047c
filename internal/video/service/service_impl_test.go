package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/kairahstudio/kairah/internal/clock"
	"github.com/kairahstudio/kairah/internal/config"
	"github.com/kairahstudio/kairah/internal/plan"
	userdomain "github.com/kairahstudio/kairah/internal/user/domain"
	userrepository "github.com/kairahstudio/kairah/internal/user/repository"
	videodomain "github.com/kairahstudio/kairah/internal/video/domain"
	"github.com/kairahstudio/kairah/internal/video/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Manual mock for the external backend.
type stubGenerator struct {
	url string
	err error
}

func (g *stubGenerator) Generate(ctx context.Context, job videodomain.GenerationJob) (string, error) {
	return g.url, g.err
}

// hookedGenerator runs a callback before returning, to interleave
// writes between the quota fast path and the insert transaction.
type hookedGenerator struct {
	url  string
	hook func()
}

func (g *hookedGenerator) Generate(ctx context.Context, job videodomain.GenerationJob) (string, error) {
	if g.hook != nil {
		g.hook()
	}
	return g.url, nil
}

type fixture struct {
	db       *gorm.DB
	svc      videodomain.Service
	userRepo userdomain.Repository
	node     *snowflake.Node
}

func newFixture(t *testing.T, gen videodomain.Generator) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userdomain.User{}, &videodomain.Video{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	userRepo := userrepository.Provide()
	svc := NewService(ServiceParam{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clock.NewFakeClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)),
		Repo:      repository.Provide(),
		UserRepo:  userRepo,
		Generator: gen,
		Billing:   config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
		Cfg:       config.Config{VideoCDNBaseURL: "https://cdn.kairahstudio.com/videos"},
	})

	return &fixture{db: db, svc: svc, userRepo: userRepo, node: node}
}

func (f *fixture) seedUser(t *testing.T, email, planName string, fameBoosterPaid bool) {
	t.Helper()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.userRepo.Insert(context.Background(), f.db, &userdomain.User{
		ID:              f.node.Generate(),
		Email:           email,
		Plan:            planName,
		ReferralCode:    "U" + f.node.Generate().String(),
		FameBoosterPaid: fameBoosterPaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}))
}

func TestGenerateFreeQuotaSingleVideo(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	ctx := context.Background()
	f.seedUser(t, "alice@example.com", string(plan.Free), false)

	first, err := f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:  "alice@example.com",
		Prompt: "sunset over lagos",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, first.Video.LengthSeconds)
	assert.Equal(t, "https://videos.example.com/a.mp4", first.Video.URL)
	assert.False(t, first.Video.Fallback)

	_, err = f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:  "alice@example.com",
		Prompt: "second try",
	})
	assert.ErrorIs(t, err, videodomain.ErrVideoQuotaExceeded)
}

func TestGenerateQuotaLatchHoldsAgainstConcurrentWrite(t *testing.T) {
	gen := &hookedGenerator{url: "https://videos.example.com/a.mp4"}
	f := newFixture(t, gen)
	ctx := context.Background()
	f.seedUser(t, "alice@example.com", string(plan.Free), false)

	// A second request commits after this one's quota read but before
	// its insert transaction.
	gen.hook = func() {
		require.NoError(t, f.userRepo.IncrementGeneratedVideos(ctx, f.db, "alice@example.com"))
	}

	_, err := f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:  "alice@example.com",
		Prompt: "simultaneous request",
	})
	assert.ErrorIs(t, err, videodomain.ErrVideoQuotaExceeded)

	var count int64
	require.NoError(t, f.db.Model(&videodomain.Video{}).Count(&count).Error)
	assert.Zero(t, count)

	user, err := f.userRepo.FindByEmail(ctx, f.db, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 1, user.GeneratedVideos)
}

func TestDownloadQuotaLatchHoldsAgainstConcurrentWrite(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	ctx := context.Background()
	f.seedUser(t, "alice@example.com", string(plan.Free), false)

	resp, err := f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:  "alice@example.com",
		Prompt: "one and only",
	})
	require.NoError(t, err)

	require.NoError(t, f.userRepo.IncrementDownloads(ctx, f.db, "alice@example.com"))

	_, err = f.svc.Download(ctx, videodomain.DownloadRequest{
		Email:   "alice@example.com",
		VideoID: resp.Video.ID.String(),
	})
	assert.ErrorIs(t, err, videodomain.ErrDownloadQuotaExceeded)

	user, err := f.userRepo.FindByEmail(ctx, f.db, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 1, user.Downloads)
}

func TestGenerateUnknownUser(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})

	_, err := f.svc.Generate(context.Background(), videodomain.GenerateRequest{
		Email:  "ghost@example.com",
		Prompt: "anything",
	})
	assert.ErrorIs(t, err, userdomain.ErrUserNotFound)
}

func TestGenerateInvalidAspectRatio(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	f.seedUser(t, "alice@example.com", string(plan.Pro), false)

	_, err := f.svc.Generate(context.Background(), videodomain.GenerateRequest{
		Email:       "alice@example.com",
		Prompt:      "square-ish",
		AspectRatio: "4:3",
	})
	assert.ErrorIs(t, err, videodomain.ErrInvalidAspectRatio)
}

func TestGenerateClipLengthCaps(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	ctx := context.Background()

	f.seedUser(t, "pro@example.com", string(plan.Pro), false)
	_, err := f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:   "pro@example.com",
		Prompt:  "too long",
		Seconds: 61,
	})
	assert.ErrorIs(t, err, videodomain.ErrClipLengthExceeded)

	f.seedUser(t, "life@example.com", string(plan.Lifetime), false)
	resp, err := f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:   "life@example.com",
		Prompt:  "feature length",
		Seconds: 3600,
	})
	require.NoError(t, err)
	assert.Equal(t, 3600, resp.Video.LengthSeconds)
}

func TestGenerateDefaultLengthPerPlan(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	ctx := context.Background()

	cases := map[string]int{
		string(plan.Pro):       30,
		string(plan.Diamond):   90,
		string(plan.Cinematic): 180,
		string(plan.Lifetime):  60,
	}
	for planName, want := range cases {
		email := strings.ToLower(planName) + "@example.com"
		f.seedUser(t, email, planName, false)
		resp, err := f.svc.Generate(ctx, videodomain.GenerateRequest{Email: email, Prompt: "defaults"})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Video.LengthSeconds, "plan %s", planName)
	}
}

func TestGeneratePremiumAssetsRequirePremiumPlan(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	ctx := context.Background()

	f.seedUser(t, "free@example.com", string(plan.Free), false)
	_, err := f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:      "free@example.com",
		Prompt:     "with template",
		TemplateID: "tpl-001",
	})
	assert.ErrorIs(t, err, videodomain.ErrPremiumRequired)

	f.seedUser(t, "diamond@example.com", string(plan.Diamond), false)
	resp, err := f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:      "diamond@example.com",
		Prompt:     "with template",
		TemplateID: "tpl-001",
		MusicID:    "trk-002",
	})
	require.NoError(t, err)
	assert.Equal(t, "tpl-001", resp.Video.TemplateID)
}

func TestGenerateFameBoosterRequiresPayment(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	ctx := context.Background()
	f.seedUser(t, "alice@example.com", string(plan.Pro), false)

	resp, err := f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:       "alice@example.com",
		Prompt:      "boost me",
		FameBooster: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.PaymentRequired)
	assert.InDelta(t, 9.0, resp.Price, 1e-9)

	var count int64
	require.NoError(t, f.db.Model(&videodomain.Video{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerateFameBoosterPaid(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	f.seedUser(t, "alice@example.com", string(plan.Pro), true)

	resp, err := f.svc.Generate(context.Background(), videodomain.GenerateRequest{
		Email:       "alice@example.com",
		Prompt:      "boost me",
		FameBooster: true,
	})
	require.NoError(t, err)
	assert.False(t, resp.PaymentRequired)
	assert.True(t, resp.Video.FameBooster)
}

func TestGenerateFallbackOnBackendFailure(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: errors.New("backend down")})
	f.seedUser(t, "alice@example.com", string(plan.Pro), false)

	resp, err := f.svc.Generate(context.Background(), videodomain.GenerateRequest{
		Email:  "alice@example.com",
		Prompt: "resilient",
	})
	require.NoError(t, err)
	assert.True(t, resp.Video.Fallback)
	assert.True(t, strings.HasPrefix(resp.Video.URL, "https://cdn.kairahstudio.com/videos/"))
	assert.True(t, strings.HasSuffix(resp.Video.URL, ".mp4"))
}

func TestDownloadFreeQuota(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	ctx := context.Background()
	f.seedUser(t, "alice@example.com", string(plan.Free), false)

	resp, err := f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:  "alice@example.com",
		Prompt: "one and only",
	})
	require.NoError(t, err)

	videoID := resp.Video.ID.String()
	first, err := f.svc.Download(ctx, videodomain.DownloadRequest{Email: "alice@example.com", VideoID: videoID})
	require.NoError(t, err)
	assert.Equal(t, resp.Video.URL, first.URL)

	_, err = f.svc.Download(ctx, videodomain.DownloadRequest{Email: "alice@example.com", VideoID: videoID})
	assert.ErrorIs(t, err, videodomain.ErrDownloadQuotaExceeded)
}

func TestDownloadUnlimitedForPaidPlans(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	ctx := context.Background()
	f.seedUser(t, "alice@example.com", string(plan.Diamond), false)

	resp, err := f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:  "alice@example.com",
		Prompt: "many downloads",
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := f.svc.Download(ctx, videodomain.DownloadRequest{
			Email:   "alice@example.com",
			VideoID: resp.Video.ID.String(),
		})
		require.NoError(t, err)
	}
}

func TestDownloadUnknownVideo(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	f.seedUser(t, "alice@example.com", string(plan.Pro), false)

	_, err := f.svc.Download(context.Background(), videodomain.DownloadRequest{
		Email:   "alice@example.com",
		VideoID: "999999999",
	})
	assert.ErrorIs(t, err, videodomain.ErrVideoNotFound)
}

func TestDownloadOtherUsersVideoHidden(t *testing.T) {
	f := newFixture(t, &stubGenerator{url: "https://videos.example.com/a.mp4"})
	ctx := context.Background()
	f.seedUser(t, "alice@example.com", string(plan.Pro), false)
	f.seedUser(t, "bob@example.com", string(plan.Pro), false)

	resp, err := f.svc.Generate(ctx, videodomain.GenerateRequest{
		Email:  "alice@example.com",
		Prompt: "private clip",
	})
	require.NoError(t, err)

	_, err = f.svc.Download(ctx, videodomain.DownloadRequest{
		Email:   "bob@example.com",
		VideoID: resp.Video.ID.String(),
	})
	assert.ErrorIs(t, err, videodomain.ErrVideoNotFound)
}
