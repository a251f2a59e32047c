package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	"github.com/kairahstudio/kairah/internal/clock"
	"github.com/kairahstudio/kairah/internal/plan"
	userdomain "github.com/kairahstudio/kairah/internal/user/domain"
	pkgdb "github.com/kairahstudio/kairah/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID        *snowflake.Node
	clock        clock.Clock
	repo         userdomain.Repository
	affiliatesvc affiliatedomain.Service
}

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         userdomain.Repository
	Affiliatesvc affiliatedomain.Service
}

func NewService(p ServiceParam) userdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("user.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		affiliatesvc: p.Affiliatesvc,
	}
}

// Register implements domain.Service. User creation, affiliate account
// provisioning and referral linking commit as one transaction.
func (s *Service) Register(ctx context.Context, req userdomain.RegisterRequest) (userdomain.RegisterResponse, error) {
	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		return userdomain.RegisterResponse{}, userdomain.ErrInvalidEmail
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return userdomain.RegisterResponse{}, err
	}
	if existing != nil {
		return userdomain.RegisterResponse{}, userdomain.ErrUserAlreadyExists
	}

	referredBy := strings.TrimSpace(req.ReferralCode)

	var user userdomain.User
	var code string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := s.affiliatesvc.ProvisionTx(ctx, tx, email)
		if err != nil {
			return err
		}
		code = account.Code

		now := s.clock.Now()
		user = userdomain.User{
			ID:           s.genID.Generate(),
			Email:        email,
			DisplayName:  strings.TrimSpace(req.DisplayName),
			Plan:         string(plan.Free),
			ReferralCode: code,
			ReferredBy:   referredBy,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.Insert(ctx, tx, &user); err != nil {
			return err
		}

		return s.affiliatesvc.LinkReferralTx(ctx, tx, referredBy, email)
	})
	if err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return userdomain.RegisterResponse{}, userdomain.ErrUserAlreadyExists
		}
		return userdomain.RegisterResponse{}, err
	}

	s.log.Info("user registered",
		zap.String("email", email),
		zap.Bool("referred", referredBy != ""),
	)
	return userdomain.RegisterResponse{User: user, ReferralCode: code}, nil
}

// Login implements domain.Service.
func (s *Service) Login(ctx context.Context, req userdomain.LoginRequest) (userdomain.User, error) {
	return s.Get(ctx, req.Email)
}

// Get implements domain.Service.
func (s *Service) Get(ctx context.Context, email string) (userdomain.User, error) {
	user, err := s.repo.FindByEmail(ctx, s.db, normalizeEmail(email))
	if err != nil {
		return userdomain.User{}, err
	}
	if user == nil {
		return userdomain.User{}, userdomain.ErrUserNotFound
	}
	return *user, nil
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context) ([]userdomain.User, error) {
	return s.repo.List(ctx, s.db)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t")
}
