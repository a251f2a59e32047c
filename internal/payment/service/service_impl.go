package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	"github.com/kairahstudio/kairah/internal/clock"
	"github.com/kairahstudio/kairah/internal/config"
	"github.com/kairahstudio/kairah/internal/observability/metrics"
	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
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
	repo         paymentdomain.Repository
	userRepo     userdomain.Repository
	affiliatesvc affiliatedomain.Service
	billing      *config.BillingConfigHolder
	metrics      *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         paymentdomain.Repository
	UserRepo     userdomain.Repository
	Affiliatesvc affiliatedomain.Service
	Billing      *config.BillingConfigHolder
	Metrics      *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) paymentdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("payment.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		userRepo:     p.UserRepo,
		affiliatesvc: p.Affiliatesvc,
		billing:      p.Billing,
		metrics:      p.Metrics,
	}
}

// Confirm implements domain.Service. The payment record, plan upgrade
// and commission accrual commit as one transaction, keyed by the
// provider payment id.
func (s *Service) Confirm(ctx context.Context, req paymentdomain.ConfirmRequest) (paymentdomain.ConfirmResult, error) {
	paymentID := strings.TrimSpace(req.PaymentID)
	email := normalizeEmail(req.Email)
	method := strings.ToLower(strings.TrimSpace(req.Method))
	planName := strings.TrimSpace(req.Plan)

	if paymentID == "" || email == "" || method == "" || req.Amount < 0 {
		return paymentdomain.ConfirmResult{}, paymentdomain.ErrInvalidPayment
	}
	if planName != "" {
		ent, err := plan.Lookup(planName)
		if err != nil {
			return paymentdomain.ConfirmResult{}, userdomain.ErrInvalidPlan
		}
		planName = string(ent.Plan)
	}

	var result paymentdomain.ConfirmResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByPaymentID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Email != email || existing.Method != method ||
				existing.Amount != req.Amount || existing.Plan != planName {
				return paymentdomain.ErrPaymentConflict
			}
			result = paymentdomain.ConfirmResult{Payment: *existing, Replayed: true}
			return nil
		}

		now := s.clock.Now()
		payment := paymentdomain.Payment{
			ID:        s.genID.Generate(),
			PaymentID: paymentID,
			Email:     email,
			Method:    method,
			Amount:    req.Amount,
			Plan:      planName,
			Status:    paymentdomain.StatusCompleted,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Insert(ctx, tx, &payment); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				// A concurrent delivery won the insert. The aborted
				// transaction cannot be reused, so resolve outside it.
				return errDuplicateInsert
			}
			return err
		}

		user, err := s.userRepo.FindByEmail(ctx, tx, email)
		if err != nil {
			return err
		}
		if user != nil {
			if err := s.applyEntitlements(ctx, tx, user, method, planName); err != nil {
				return err
			}
		}

		code := strings.TrimSpace(req.ReferralCode)
		if code == "" && user != nil {
			code = user.ReferredBy
		}
		accrual, err := s.affiliatesvc.AccrueTx(ctx, tx, affiliatedomain.AccrueRequest{
			Code:       code,
			SaleAmount: req.Amount,
			Plan:       planName,
			PayerEmail: email,
		})
		if err != nil {
			return err
		}

		result = paymentdomain.ConfirmResult{Payment: payment, Commission: accrual}
		return nil
	})
	if errors.Is(err, errDuplicateInsert) {
		result, err = s.resolveDuplicate(ctx, paymentID, email, method, req.Amount, planName)
	}
	if err != nil {
		return paymentdomain.ConfirmResult{}, err
	}

	if result.Replayed {
		s.log.Info("payment replayed",
			zap.String("payment_id", paymentID),
			zap.String("method", method),
		)
		return result, nil
	}

	s.metrics.RecordPaymentEvent(ctx, method, "completed")
	if result.Commission.Commission > 0 {
		s.metrics.RecordCommissionAccrual(ctx, planName)
	}
	s.log.Info("payment confirmed",
		zap.String("payment_id", paymentID),
		zap.String("method", method),
		zap.Float64("amount", req.Amount),
		zap.String("plan", planName),
	)
	return result, nil
}

var errDuplicateInsert = errors.New("duplicate_payment_insert")

// resolveDuplicate re-reads the record that beat us to the unique
// index. An identical delivery is a replay; anything else conflicts.
func (s *Service) resolveDuplicate(ctx context.Context, paymentID, email, method string, amount float64, planName string) (paymentdomain.ConfirmResult, error) {
	stored, err := s.repo.FindByPaymentID(ctx, s.db, paymentID)
	if err != nil {
		return paymentdomain.ConfirmResult{}, err
	}
	if stored == nil {
		return paymentdomain.ConfirmResult{}, paymentdomain.ErrPaymentConflict
	}
	if stored.Email != email || stored.Method != method ||
		stored.Amount != amount || stored.Plan != planName {
		return paymentdomain.ConfirmResult{}, paymentdomain.ErrPaymentConflict
	}
	return paymentdomain.ConfirmResult{Payment: *stored, Replayed: true}, nil
}

// applyEntitlements upgrades the payer. Fame booster payments flip the
// add-on flag instead of changing plan.
func (s *Service) applyEntitlements(ctx context.Context, tx *gorm.DB, user *userdomain.User, method, planName string) error {
	if method == paymentdomain.MethodFameBooster {
		return s.userRepo.SetFameBoosterPaid(ctx, tx, user.Email)
	}
	if planName == "" {
		return nil
	}

	if s.billing.Get().PreventDowngrade {
		current := plan.Rank(plan.Plan(user.Plan))
		next := plan.Rank(plan.Plan(planName))
		if next < current {
			s.log.Warn("downgrade blocked by policy",
				zap.String("email", user.Email),
				zap.String("current_plan", user.Plan),
				zap.String("paid_plan", planName),
			)
			return nil
		}
	}

	return s.userRepo.UpdatePlan(ctx, tx, user.Email, planName)
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context) ([]paymentdomain.Payment, error) {
	return s.repo.List(ctx, s.db)
}

// ListByEmail implements domain.Service.
func (s *Service) ListByEmail(ctx context.Context, email string) ([]paymentdomain.Payment, error) {
	return s.repo.ListByEmail(ctx, s.db, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
