package affiliate

import (
	"github.com/kairahstudio/kairah/internal/affiliate/repository"
	"github.com/kairahstudio/kairah/internal/affiliate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("affiliate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
