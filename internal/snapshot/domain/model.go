package domain

import (
	"context"
	"errors"

	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
	userdomain "github.com/kairahstudio/kairah/internal/user/domain"
	videodomain "github.com/kairahstudio/kairah/internal/video/domain"
)

var ErrInvalidSnapshot = errors.New("invalid_snapshot")

// AffiliateState bundles one account with its referral and payout
// history for export.
type AffiliateState struct {
	Account  affiliatedomain.Account    `json:"account"`
	Referred []affiliatedomain.Referral `json:"referred"`
	Payouts  []affiliatedomain.Payout   `json:"payouts"`
}

// Document is the full serialized ledger state.
type Document struct {
	Users      []userdomain.User       `json:"users"`
	Affiliates []AffiliateState        `json:"affiliates"`
	Videos     []videodomain.Video     `json:"videos"`
	Payments   []paymentdomain.Payment `json:"payments"`
}

type Service interface {
	Export(ctx context.Context) (Document, error)
	Import(ctx context.Context, doc Document) error
	SaveToFile(ctx context.Context, path string) error
	LoadFromFile(ctx context.Context, path string) error
}
