package service

import (
	"context"
	"encoding/json"
	"os"

	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
	snapshotdomain "github.com/kairahstudio/kairah/internal/snapshot/domain"
	userdomain "github.com/kairahstudio/kairah/internal/user/domain"
	videodomain "github.com/kairahstudio/kairah/internal/video/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	userRepo      userdomain.Repository
	affiliateRepo affiliatedomain.Repository
	videoRepo     videodomain.Repository
	paymentRepo   paymentdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	UserRepo      userdomain.Repository
	AffiliateRepo affiliatedomain.Repository
	VideoRepo     videodomain.Repository
	PaymentRepo   paymentdomain.Repository
}

func NewService(p ServiceParam) snapshotdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("snapshot.service"),
		userRepo:      p.UserRepo,
		affiliateRepo: p.AffiliateRepo,
		videoRepo:     p.VideoRepo,
		paymentRepo:   p.PaymentRepo,
	}
}

// Export implements domain.Service.
func (s *Service) Export(ctx context.Context) (snapshotdomain.Document, error) {
	users, err := s.userRepo.List(ctx, s.db)
	if err != nil {
		return snapshotdomain.Document{}, err
	}
	accounts, err := s.affiliateRepo.List(ctx, s.db)
	if err != nil {
		return snapshotdomain.Document{}, err
	}
	videos, err := s.videoRepo.List(ctx, s.db)
	if err != nil {
		return snapshotdomain.Document{}, err
	}
	payments, err := s.paymentRepo.List(ctx, s.db)
	if err != nil {
		return snapshotdomain.Document{}, err
	}

	affiliates := make([]snapshotdomain.AffiliateState, 0, len(accounts))
	for _, account := range accounts {
		referred, err := s.affiliateRepo.ListReferrals(ctx, s.db, account.Code)
		if err != nil {
			return snapshotdomain.Document{}, err
		}
		payouts, err := s.affiliateRepo.ListPayouts(ctx, s.db, account.Code)
		if err != nil {
			return snapshotdomain.Document{}, err
		}
		affiliates = append(affiliates, snapshotdomain.AffiliateState{
			Account:  account,
			Referred: referred,
			Payouts:  payouts,
		})
	}

	return snapshotdomain.Document{
		Users:      users,
		Affiliates: affiliates,
		Videos:     videos,
		Payments:   payments,
	}, nil
}

// Import implements domain.Service. The current ledger state is
// replaced wholesale inside one transaction.
func (s *Service) Import(ctx context.Context, doc snapshotdomain.Document) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{
			"affiliate_payouts",
			"affiliate_referrals",
			"affiliate_accounts",
			"videos",
			"payments",
			"users",
		} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}

		for i := range doc.Users {
			if err := s.userRepo.Insert(ctx, tx, &doc.Users[i]); err != nil {
				return err
			}
		}
		for i := range doc.Affiliates {
			state := &doc.Affiliates[i]
			if err := s.affiliateRepo.Insert(ctx, tx, &state.Account); err != nil {
				return err
			}
			for j := range state.Referred {
				if err := s.affiliateRepo.InsertReferral(ctx, tx, &state.Referred[j]); err != nil {
					return err
				}
			}
			for j := range state.Payouts {
				if err := s.affiliateRepo.InsertPayout(ctx, tx, &state.Payouts[j]); err != nil {
					return err
				}
			}
		}
		for i := range doc.Videos {
			if err := s.videoRepo.Insert(ctx, tx, &doc.Videos[i]); err != nil {
				return err
			}
		}
		for i := range doc.Payments {
			if err := s.paymentRepo.Insert(ctx, tx, &doc.Payments[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("snapshot imported",
		zap.Int("users", len(doc.Users)),
		zap.Int("affiliates", len(doc.Affiliates)),
		zap.Int("videos", len(doc.Videos)),
		zap.Int("payments", len(doc.Payments)),
	)
	return nil
}

// SaveToFile implements domain.Service.
func (s *Service) SaveToFile(ctx context.Context, path string) error {
	doc, err := s.Export(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFromFile implements domain.Service.
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc snapshotdomain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return snapshotdomain.ErrInvalidSnapshot
	}
	return s.Import(ctx, doc)
}
