package user

import (
	"github.com/kairahstudio/kairah/internal/user/repository"
	"github.com/kairahstudio/kairah/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
