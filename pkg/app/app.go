// Package app 提供应用程序的初始化和配置功能.
package app

import (
	contextPkg "context"
	"fmt"
	"os"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/filerelay/pkg/configs"
	"github.com/yeisme/filerelay/pkg/internal/jobs"
	"github.com/yeisme/filerelay/pkg/internal/provider"
	"github.com/yeisme/filerelay/pkg/internal/router"
	"github.com/yeisme/filerelay/pkg/internal/storage"
	"github.com/yeisme/filerelay/pkg/log"
	"github.com/yeisme/filerelay/pkg/metrics"
	"github.com/yeisme/filerelay/pkg/middleware"
	"github.com/yeisme/filerelay/pkg/rule"
	"github.com/yeisme/filerelay/pkg/scheduler"
	"github.com/yeisme/filerelay/pkg/tracing"
)

type App struct {
	Engine *gin.Engine
	config *configs.AppConfig
	sched  *scheduler.Scheduler
}

func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()
	if err := rule.ValidateStruct(config); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init()

	if !config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	// 构建 Provider 注册表，凭证缺失的后端降级为未配置
	registry := provider.BuildRegistry(ctx, config)

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.StorageMiddleware(manager),
		middleware.RegistryMiddleware(registry),
	)

	router.RegisterUploadRoutes(engine)
	router.RegisterAPIRoutes(engine)
	router.RegisterHealthCheckRoute(engine)

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	sched, err := scheduler.NewScheduler()
	if err != nil {
		l.Error().Err(err).Msg("调度器初始化失败，定时任务已禁用")
	} else {
		if err := jobs.RegisterCronJobs(sched, manager); err != nil {
			l.Error().Err(err).Msg("定时任务注册失败")
		}

		sched.Start()
	}

	return &App{
		Engine: engine,
		config: config,
		sched:  sched,
	}
}

func (a *App) Run() error {
	defer func() {
		if a.sched != nil {
			_ = a.sched.Stop()
		}
	}()

	return a.Engine.Run(fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port))
}
