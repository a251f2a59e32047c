package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/bwmarrin/snowflake"
	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	"github.com/kairahstudio/kairah/internal/clock"
	"github.com/kairahstudio/kairah/internal/config"
	"github.com/kairahstudio/kairah/internal/plan"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	codeAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength      = 8
	codeMaxAttempts = 10
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	repo    affiliatedomain.Repository
	billing *config.BillingConfigHolder
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    affiliatedomain.Repository
	Billing *config.BillingConfigHolder
}

func NewService(p ServiceParam) affiliatedomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("affiliate.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		billing: p.Billing,
	}
}

// ProvisionTx implements domain.Service.
func (s *Service) ProvisionTx(ctx context.Context, tx *gorm.DB, email string) (affiliatedomain.Account, error) {
	email = normalizeEmail(email)

	existing, err := s.repo.FindByEmail(ctx, tx, email)
	if err != nil {
		return affiliatedomain.Account{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	code, err := s.generateCode(ctx, tx)
	if err != nil {
		return affiliatedomain.Account{}, err
	}

	now := s.clock.Now()
	account := affiliatedomain.Account{
		ID:        s.genID.Generate(),
		Code:      code,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, tx, &account); err != nil {
		return affiliatedomain.Account{}, err
	}
	return account, nil
}

// LinkReferralTx implements domain.Service.
func (s *Service) LinkReferralTx(ctx context.Context, tx *gorm.DB, code, referredEmail string) error {
	code = strings.TrimSpace(code)
	referredEmail = normalizeEmail(referredEmail)
	if code == "" || referredEmail == "" {
		return nil
	}

	account, err := s.repo.FindByCode(ctx, tx, code)
	if err != nil {
		return err
	}
	if account == nil {
		s.log.Debug("referral code unknown, skipping link", zap.String("code", code))
		return nil
	}

	existing, err := s.repo.FindReferral(ctx, tx, code, referredEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	return s.repo.InsertReferral(ctx, tx, &affiliatedomain.Referral{
		ID:            s.genID.Generate(),
		Code:          code,
		ReferredEmail: referredEmail,
		CreatedAt:     s.clock.Now(),
	})
}

// AccrueTx implements domain.Service.
func (s *Service) AccrueTx(ctx context.Context, tx *gorm.DB, req affiliatedomain.AccrueRequest) (affiliatedomain.AccrueResult, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" || req.SaleAmount <= 0 {
		return affiliatedomain.AccrueResult{MissingCode: code == ""}, nil
	}

	account, err := s.repo.FindByCodeForUpdate(ctx, tx, code)
	if err != nil {
		return affiliatedomain.AccrueResult{}, err
	}
	if account == nil {
		// Unknown codes never create an account retroactively.
		return affiliatedomain.AccrueResult{MissingCode: true}, nil
	}

	billing := s.billing.Get()
	commission := req.SaleAmount * billing.CommissionRate
	account.Balance += commission

	result := affiliatedomain.AccrueResult{Commission: commission}

	if qualifiesForMilestone(req.Plan) {
		qualified, err := s.markQualifiedSale(ctx, tx, account, req.PayerEmail)
		if err != nil {
			return affiliatedomain.AccrueResult{}, err
		}
		result.QualifiedSale = qualified
		if qualified &&
			account.QualifiedSales >= billing.MilestoneThreshold &&
			!account.MilestoneAwarded {
			account.Balance += billing.MilestoneBonus
			account.BonusTotal += billing.MilestoneBonus
			account.MilestoneAwarded = true
			result.BonusAwarded = true
			result.BonusAmount = billing.MilestoneBonus
		}
	}

	account.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, tx, account); err != nil {
		return affiliatedomain.AccrueResult{}, err
	}

	result.Balance = account.Balance
	s.log.Info("commission accrued",
		zap.String("code", code),
		zap.Float64("commission", commission),
		zap.Bool("bonus_awarded", result.BonusAwarded),
	)
	return result, nil
}

// markQualifiedSale latches the referral's qualified flag and bumps the
// account counter. Each referred user counts at most once.
func (s *Service) markQualifiedSale(ctx context.Context, tx *gorm.DB, account *affiliatedomain.Account, payerEmail string) (bool, error) {
	payerEmail = normalizeEmail(payerEmail)
	if payerEmail == "" {
		return false, nil
	}

	referral, err := s.repo.FindReferral(ctx, tx, account.Code, payerEmail)
	if err != nil {
		return false, err
	}
	if referral == nil || referral.Qualified {
		return false, nil
	}

	if err := s.repo.MarkReferralQualified(ctx, tx, account.Code, payerEmail); err != nil {
		return false, err
	}
	account.QualifiedSales++
	return true, nil
}

// Payout implements domain.Service.
func (s *Service) Payout(ctx context.Context, req affiliatedomain.PayoutRequest) (affiliatedomain.Payout, error) {
	if req.Amount <= 0 {
		return affiliatedomain.Payout{}, affiliatedomain.ErrInvalidAmount
	}

	var payout affiliatedomain.Payout
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := s.repo.FindByCodeForUpdate(ctx, tx, strings.TrimSpace(req.Code))
		if err != nil {
			return err
		}
		if account == nil {
			return affiliatedomain.ErrAccountNotFound
		}
		if req.Amount > account.Balance {
			return affiliatedomain.ErrInsufficientBalance
		}

		account.Balance -= req.Amount
		account.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, account); err != nil {
			return err
		}

		payout = affiliatedomain.Payout{
			ID:        s.genID.Generate(),
			Code:      account.Code,
			Amount:    req.Amount,
			CreatedAt: s.clock.Now(),
		}
		return s.repo.InsertPayout(ctx, tx, &payout)
	})
	if err != nil {
		return affiliatedomain.Payout{}, err
	}

	s.log.Info("payout recorded",
		zap.String("code", payout.Code),
		zap.Float64("amount", payout.Amount),
	)
	return payout, nil
}

// GetEarnings implements domain.Service.
func (s *Service) GetEarnings(ctx context.Context, code string) (affiliatedomain.Earnings, error) {
	account, err := s.repo.FindByCode(ctx, s.db, strings.TrimSpace(code))
	if err != nil {
		return affiliatedomain.Earnings{}, err
	}
	if account == nil {
		return affiliatedomain.Earnings{}, affiliatedomain.ErrAccountNotFound
	}
	return s.assembleEarnings(ctx, *account)
}

// GetEarningsByEmail implements domain.Service. Accounts are
// provisioned lazily on first query so older users can still enroll.
func (s *Service) GetEarningsByEmail(ctx context.Context, email string) (affiliatedomain.Earnings, error) {
	email = normalizeEmail(email)

	var account affiliatedomain.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		provisioned, err := s.ProvisionTx(ctx, tx, email)
		if err != nil {
			return err
		}
		account = provisioned
		return nil
	})
	if err != nil {
		return affiliatedomain.Earnings{}, err
	}
	return s.assembleEarnings(ctx, account)
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context) ([]affiliatedomain.Earnings, error) {
	accounts, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	out := make([]affiliatedomain.Earnings, 0, len(accounts))
	for _, account := range accounts {
		earnings, err := s.assembleEarnings(ctx, account)
		if err != nil {
			return nil, err
		}
		out = append(out, earnings)
	}
	return out, nil
}

func (s *Service) assembleEarnings(ctx context.Context, account affiliatedomain.Account) (affiliatedomain.Earnings, error) {
	referred, err := s.repo.ListReferrals(ctx, s.db, account.Code)
	if err != nil {
		return affiliatedomain.Earnings{}, err
	}
	payouts, err := s.repo.ListPayouts(ctx, s.db, account.Code)
	if err != nil {
		return affiliatedomain.Earnings{}, err
	}

	return affiliatedomain.Earnings{
		Code:             account.Code,
		Email:            account.Email,
		Balance:          account.Balance,
		BonusTotal:       account.BonusTotal,
		QualifiedSales:   account.QualifiedSales,
		MilestoneAwarded: account.MilestoneAwarded,
		Referred:         referred,
		Payouts:          payouts,
	}, nil
}

func (s *Service) generateCode(ctx context.Context, tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < codeMaxAttempts; attempt++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", err
		}
		existing, err := s.repo.FindByCode(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", affiliatedomain.ErrCodeExhausted
}

func randomCode(length int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func qualifiesForMilestone(planName string) bool {
	ent, err := plan.Lookup(planName)
	if err != nil {
		return false
	}
	return ent.Plan == plan.Cinematic || ent.Plan == plan.Lifetime
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
