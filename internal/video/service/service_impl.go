package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kairahstudio/kairah/internal/clock"
	"github.com/kairahstudio/kairah/internal/config"
	"github.com/kairahstudio/kairah/internal/observability/metrics"
	"github.com/kairahstudio/kairah/internal/plan"
	"github.com/kairahstudio/kairah/internal/ratelimit"
	userdomain "github.com/kairahstudio/kairah/internal/user/domain"
	videodomain "github.com/kairahstudio/kairah/internal/video/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var validAspectRatios = map[string]struct{}{
	"16:9": {},
	"9:16": {},
	"1:1":  {},
}

const defaultAspectRatio = "16:9"
const generateLockTTL = 2 * time.Minute

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	clock     clock.Clock
	repo      videodomain.Repository
	userRepo  userdomain.Repository
	generator videodomain.Generator
	locker    *ratelimit.Locker
	billing   *config.BillingConfigHolder
	metrics   *metrics.Metrics
	cdnBase   string
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      videodomain.Repository
	UserRepo  userdomain.Repository
	Generator videodomain.Generator
	Locker    *ratelimit.Locker `optional:"true"`
	Billing   *config.BillingConfigHolder
	Cfg       config.Config
	Metrics   *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) videodomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("video.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		userRepo:  p.UserRepo,
		generator: p.Generator,
		locker:    p.Locker,
		billing:   p.Billing,
		metrics:   p.Metrics,
		cdnBase:   strings.TrimRight(p.Cfg.VideoCDNBaseURL, "/"),
	}
}

// Generate implements domain.Service. The entitlement chain runs in
// order: identity, aspect ratio, clip length, premium assets, fame
// booster prepayment, then plan quota.
func (s *Service) Generate(ctx context.Context, req videodomain.GenerateRequest) (videodomain.GenerateResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.userRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return videodomain.GenerateResponse{}, err
	}
	if user == nil {
		return videodomain.GenerateResponse{}, userdomain.ErrUserNotFound
	}

	aspect := strings.TrimSpace(req.AspectRatio)
	if aspect == "" {
		aspect = defaultAspectRatio
	}
	if _, ok := validAspectRatios[aspect]; !ok {
		return videodomain.GenerateResponse{}, videodomain.ErrInvalidAspectRatio
	}

	ent, err := plan.Lookup(user.Plan)
	if err != nil {
		return videodomain.GenerateResponse{}, err
	}

	length := ent.DefaultSeconds
	if req.Seconds > 0 {
		if ent.MaxSeconds != nil && req.Seconds > *ent.MaxSeconds {
			return videodomain.GenerateResponse{}, videodomain.ErrClipLengthExceeded
		}
		length = req.Seconds
	}

	if (req.TemplateID != "" || req.MusicID != "") && !ent.Premium {
		return videodomain.GenerateResponse{}, videodomain.ErrPremiumRequired
	}

	if req.FameBooster && !user.FameBoosterPaid {
		return videodomain.GenerateResponse{
			PaymentRequired: true,
			Price:           s.billing.Get().FameBoosterPrice,
			Message:         "fame booster requires payment before generation",
		}, nil
	}

	// Fast path only. The conditional increment inside the insert
	// transaction is the authoritative quota latch.
	if !plan.Unlimited(ent.VideoQuota) && user.GeneratedVideos >= ent.VideoQuota {
		return videodomain.GenerateResponse{}, videodomain.ErrVideoQuotaExceeded
	}

	lockKey := "lock:generate:" + email
	token, locked, err := s.locker.TryLock(ctx, lockKey, generateLockTTL)
	if err != nil {
		return videodomain.GenerateResponse{}, err
	}
	if !locked {
		return videodomain.GenerateResponse{}, videodomain.ErrGenerationBusy
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey, token); err != nil {
			s.log.Warn("lock release failed", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	id := s.genID.Generate()
	url, fallback := s.renderURL(ctx, id, videodomain.GenerationJob{
		Prompt:        req.Prompt,
		LengthSeconds: length,
		AspectRatio:   aspect,
		TemplateID:    strings.TrimSpace(req.TemplateID),
		MusicID:       strings.TrimSpace(req.MusicID),
	})

	video := videodomain.Video{
		ID:            id,
		Email:         email,
		Prompt:        req.Prompt,
		URL:           url,
		LengthSeconds: length,
		AspectRatio:   aspect,
		FameBooster:   req.FameBooster,
		TemplateID:    strings.TrimSpace(req.TemplateID),
		MusicID:       strings.TrimSpace(req.MusicID),
		Fallback:      fallback,
		CreatedAt:     s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if plan.Unlimited(ent.VideoQuota) {
			if err := s.userRepo.IncrementGeneratedVideos(ctx, tx, email); err != nil {
				return err
			}
		} else {
			taken, err := s.userRepo.IncrementGeneratedVideosBelow(ctx, tx, email, ent.VideoQuota)
			if err != nil {
				return err
			}
			if !taken {
				return videodomain.ErrVideoQuotaExceeded
			}
		}
		return s.repo.Insert(ctx, tx, &video)
	})
	if err != nil {
		return videodomain.GenerateResponse{}, err
	}

	s.metrics.RecordVideoGenerated(ctx, user.Plan)
	s.log.Info("video generated",
		zap.String("email", email),
		zap.Int("length_seconds", length),
		zap.Bool("fallback", fallback),
	)

	message := fmt.Sprintf("video generated (%ds)", length)
	if fallback {
		message = fmt.Sprintf("mock video generated (%ds)", length)
	}
	return videodomain.GenerateResponse{Video: video, Message: message}, nil
}

// renderURL calls the external backend and falls back to a placeholder
// clip when the backend is unavailable.
func (s *Service) renderURL(ctx context.Context, id snowflake.ID, job videodomain.GenerationJob) (string, bool) {
	url, err := s.generator.Generate(ctx, job)
	if err == nil {
		return url, false
	}

	s.log.Warn("video backend unavailable, using placeholder", zap.Error(err))
	return fmt.Sprintf("%s/%s.mp4", s.cdnBase, id.String()), true
}

// Download implements domain.Service.
func (s *Service) Download(ctx context.Context, req videodomain.DownloadRequest) (videodomain.DownloadResponse, error) {
	email := normalizeEmail(req.Email)

	id, err := snowflake.ParseString(strings.TrimSpace(req.VideoID))
	if err != nil {
		return videodomain.DownloadResponse{}, videodomain.ErrVideoNotFound
	}

	var url string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.FindByEmail(ctx, tx, email)
		if err != nil {
			return err
		}
		if user == nil {
			return userdomain.ErrUserNotFound
		}

		video, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if video == nil || video.Email != email {
			return videodomain.ErrVideoNotFound
		}

		ent, err := plan.Lookup(user.Plan)
		if err != nil {
			return err
		}
		if !plan.Unlimited(ent.DownloadQuota) {
			taken, err := s.userRepo.IncrementDownloadsBelow(ctx, tx, email, ent.DownloadQuota)
			if err != nil {
				return err
			}
			if !taken {
				return videodomain.ErrDownloadQuotaExceeded
			}
		}

		url = video.URL
		return nil
	})
	if err != nil {
		return videodomain.DownloadResponse{}, err
	}

	return videodomain.DownloadResponse{URL: url}, nil
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context) ([]videodomain.Video, error) {
	return s.repo.List(ctx, s.db)
}

// ListByEmail implements domain.Service.
func (s *Service) ListByEmail(ctx context.Context, email string) ([]videodomain.Video, error) {
	return s.repo.ListByEmail(ctx, s.db, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
