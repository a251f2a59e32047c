package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kairahstudio/kairah/internal/affiliate"
	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	"github.com/kairahstudio/kairah/internal/clock"
	"github.com/kairahstudio/kairah/internal/config"
	"github.com/kairahstudio/kairah/internal/observability"
	obslogger "github.com/kairahstudio/kairah/internal/observability/logger"
	obsmetrics "github.com/kairahstudio/kairah/internal/observability/metrics"
	obstracing "github.com/kairahstudio/kairah/internal/observability/tracing"
	"github.com/kairahstudio/kairah/internal/payment"
	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
	"github.com/kairahstudio/kairah/internal/ratelimit"
	"github.com/kairahstudio/kairah/internal/snapshot"
	snapshotdomain "github.com/kairahstudio/kairah/internal/snapshot/domain"
	"github.com/kairahstudio/kairah/internal/user"
	userdomain "github.com/kairahstudio/kairah/internal/user/domain"
	"github.com/kairahstudio/kairah/internal/video"
	videodomain "github.com/kairahstudio/kairah/internal/video/domain"
	pkgdb "github.com/kairahstudio/kairah/pkg/db"
)

var Module = fx.Module("http.server",
	config.Module,
	observability.Module,
	clock.Module,
	pkgdb.Module,
	ratelimit.Module,
	user.Module,
	affiliate.Module,
	payment.Module,
	video.Module,
	snapshot.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(obsCfg.ServiceName))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger

	usersvc      userdomain.Service
	videosvc     videodomain.Service
	paymentsvc   paymentdomain.Service
	webhooksvc   paymentdomain.WebhookService
	affiliatesvc affiliatedomain.Service
	snapshotsvc  snapshotdomain.Service
	limiter      *ratelimit.Limiter
	metrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	Usersvc      userdomain.Service
	Videosvc     videodomain.Service
	Paymentsvc   paymentdomain.Service
	Webhooksvc   paymentdomain.WebhookService
	Affiliatesvc affiliatedomain.Service
	Snapshotsvc  snapshotdomain.Service
	Limiter      *ratelimit.Limiter `optional:"true"`
	Metrics      *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("http.server"),
		usersvc:      p.Usersvc,
		videosvc:     p.Videosvc,
		paymentsvc:   p.Paymentsvc,
		webhooksvc:   p.Webhooksvc,
		affiliatesvc: p.Affiliatesvc,
		snapshotsvc:  p.Snapshotsvc,
		limiter:      p.Limiter,
		metrics:      p.Metrics,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.engine

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": s.cfg.AppName,
			"version": s.cfg.AppVersion,
		})
	})

	api := r.Group("/api")
	{
		api.POST("/signup", s.Signup)
		api.POST("/login", s.Login)
		api.GET("/users/:email", s.GetUser)

		api.POST("/generate-video", s.rateLimitGenerate(), s.GenerateVideo)
		api.POST("/download", s.DownloadVideo)
		api.GET("/videos", s.ListUserVideos)

		api.GET("/affiliate/earnings", s.AffiliateEarnings)
		api.GET("/affiliate/:code", s.AffiliateByCode)

		api.POST("/payments/webhooks/:provider", s.rateLimitWebhook(), s.PaymentWebhook)
	}

	admin := api.Group("/admin", s.requireAdminToken())
	{
		admin.POST("/payments/confirm", s.AdminConfirmPayment)
		admin.POST("/affiliates/payout", s.AdminPayout)
		admin.GET("/export/:entity", s.AdminExport)
		admin.GET("/snapshot", s.AdminSnapshotExport)
		admin.POST("/snapshot", s.AdminSnapshotImport)
	}
}
