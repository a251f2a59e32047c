package video

import (
	"github.com/kairahstudio/kairah/internal/video/generator"
	"github.com/kairahstudio/kairah/internal/video/repository"
	"github.com/kairahstudio/kairah/internal/video/service"
	"go.uber.org/fx"
)

var Module = fx.Module("video.service",
	fx.Provide(repository.Provide),
	fx.Provide(generator.NewClient),
	fx.Provide(service.NewService),
)
