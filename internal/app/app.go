package app

import (
	"ai_mentor_client/internal/config"
	"ai_mentor_client/internal/controller"
	"ai_mentor_client/internal/gateway"
	"ai_mentor_client/internal/middleware"
	"ai_mentor_client/internal/repository"
	"ai_mentor_client/internal/service"
	"ai_mentor_client/internal/util"
	"ai_mentor_client/pkg/configwatcher"
	"ai_mentor_client/pkg/database"
	"ai_mentor_client/pkg/logger"
	"ai_mentor_client/pkg/monitoring"
	"ai_mentor_client/pkg/security"
	"ai_mentor_client/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *gorm.DB
	Redis   *redis.Client
	Backend *gateway.Client

	services *services
	limiter  *security.Limiter
	tracer   *sdktrace.TracerProvider

	cfgMu           sync.Mutex
	configCallbacks []func(*config.Config)
}

type services struct {
	session   *service.SessionService
	auth      *service.AuthService
	dashboard *service.DashboardService
}

type controllers struct {
	auth      *controller.AuthController
	profile   *controller.ProfileController
	dashboard *controller.DashboardController
	learning  *controller.LearningController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// reloadConfig 热加载的配置先叠加启动时的命令行覆盖项，再通知各回调
func (a *App) reloadConfig(cfg *config.Config) {
	if err := cfg.ApplyOverrides(a.Config.Overrides); err != nil {
		logger.Log.Error("reloaded config rejected", zap.Error(err))
		return
	}
	a.cfgMu.Lock()
	callbacks := append(([]func(*config.Config))(nil), a.configCallbacks...)
	a.cfgMu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

// initStorage 按 storage.driver 选择令牌槽位的实现
func (a *App) initStorage(ctx context.Context, cfg *config.Config) (repository.TokenStore, controller.Pinger, error) {
	switch cfg.Storage.Driver {
	case util.StorageRedis:
		rdb, err := database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		a.Redis = rdb
		ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		return repository.NewRedisTokenRepository(rdb), ping, nil
	case util.StorageSQLite, util.StorageMySQL:
		db, err := database.InitDB(&cfg.Storage, cfg.Server.Mode == gin.DebugMode)
		if err != nil {
			return nil, nil, err
		}
		a.DB = db
		ping := func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
		return repository.NewLocalStorageRepository(db), ping, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func (a *App) initServices(store repository.TokenStore, cfg *config.Config) *services {
	s := &services{}
	s.session = service.NewSessionService(store, a.Backend, cfg.Storage.TokenKey)
	s.auth = service.NewAuthService(a.Backend, s.session)
	s.dashboard = service.NewDashboardService(a.Backend, s.session, cfg.Dashboard)
	return s
}

func (a *App) initControllers(s *services, ping controller.Pinger) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth, s.dashboard),
		profile:   controller.NewProfileController(s.dashboard),
		dashboard: controller.NewDashboardController(s.dashboard),
		learning:  controller.NewLearningController(s.dashboard),
		health:    controller.NewHealthController(ping, a.Backend.BaseURL),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(middleware.RequestID())
	router.Use(monitoring.MetricsMiddleware())
}

// restoreSession 启动时恢复上次的会话并加载首页数据
func (a *App) restoreSession(ctx context.Context) {
	err := a.services.session.Restore(ctx)
	switch {
	case errors.Is(err, util.ErrTokenExpired):
		logger.Log.Info("stored session expired")
		return
	case err != nil:
		logger.Log.Error("failed to restore session", zap.Error(err))
		return
	}
	if !a.services.session.Authenticated() {
		return
	}
	if err := a.services.dashboard.Load(ctx); err != nil {
		logger.Log.Warn("initial dashboard load failed", zap.Error(err))
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{
		Config:  cfg,
		Backend: gateway.New(cfg.Backend),
		limiter: security.NewLimiter(cfg.RateLimit),
	}

	store, ping, err := app.initStorage(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize session storage", zap.Error(err))
		log.Fatalf("Failed to initialize session storage: %v", err)
	}

	app.services = app.initServices(store, cfg)
	controllers := app.initControllers(app.services, ping)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("ai-mentor-client", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	// 配置热加载：后端地址与超时立即生效
	app.RegisterConfigCallback(func(c *config.Config) {
		app.Backend.Apply(c.Backend)
		logger.SetLevel(c)
		logger.Log.Info("backend config reloaded",
			zap.String("base_url", c.Backend.BaseURL),
			zap.Duration("timeout", c.Backend.Timeout),
		)
	})

	app.restoreSession(context.Background())

	return app
}

func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.limiter.Janitor(ctx)

	if a.Config.ConfigPath != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.Config.ConfigPath, a.reloadConfig); err != nil {
				logger.Log.Error("config watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port), zap.String("backend", a.Backend.BaseURL()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	log.Println("Server exiting")
}
