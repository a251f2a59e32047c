package migration

import (
	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
	userdomain "github.com/kairahstudio/kairah/internal/user/domain"
	videodomain "github.com/kairahstudio/kairah/internal/video/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module creates the ledger schema on startup so local and
// self-hosted deployments work out of the box on any dialect.
var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&userdomain.User{},
		&affiliatedomain.Account{},
		&affiliatedomain.Referral{},
		&affiliatedomain.Payout{},
		&paymentdomain.Payment{},
		&videodomain.Video{},
	)
}
