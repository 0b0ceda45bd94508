package routes

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "contacto_profesionales/docs" // swagger spec
	"contacto_profesionales/internal/adapter/http/handlers"
	"contacto_profesionales/internal/adapter/http/middleware"
	"contacto_profesionales/internal/config"
	"contacto_profesionales/internal/platform/logger"
	"contacto_profesionales/internal/platform/metrics"
	"contacto_profesionales/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

var router = gin.New()

const shutdownTimeout = 10 * time.Second

// Run will start the server and block until SIGINT or SIGTERM.
func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatalf("Failed to startup the application: JWT_SECRET is required")
	}

	appLog := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}).Named(cfg.ServiceName)
	defer func() { _ = appLog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.MetricsManager
	if cfg.MetricsEnabled {
		m = metrics.NewMetricsManager(cfg.ServiceName)
	}

	deps, err := buildDependencies(ctx, cfg, appLog, m)
	if err != nil {
		appLog.Fatal("Failed to wire dependencies", zap.Error(err))
	}
	defer deps.Close()

	setMiddlewares(router, appLog, m)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	loc := cfg.Location()
	uc := usecase.NewServiceRequestUseCase(deps.Repository, deps.Notifier, appLog).WithLocation(loc)
	getRoutes(router, handlers.NewServiceRequestHandler(uc, m).WithLocation(loc), middleware.JWTAuth(cfg.JWTSecret, appLog))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLog.Info("HTTP server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage_driver", cfg.StorageDriver),
			zap.Strings("notification_channels", deps.Notifier.Channels()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to startup the application", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
}

func getRoutes(engine *gin.Engine, serviceRequestHandler *handlers.ServiceRequestHandler, auth gin.HandlerFunc) {
	// Rotas publicas
	v1 := engine.Group("/v1")
	addPingRoutes(v1)

	// Rotas autenticadas
	protected := v1.Group("", auth)
	addServiceRequestRoutes(protected, serviceRequestHandler)
}

func setMiddlewares(engine *gin.Engine, appLog *logger.Logger, m *metrics.MetricsManager) {
	engine.Use(middleware.RequestLogger(appLog))
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		appLog.Error("Recovered from panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	if m != nil {
		engine.Use(m.GinMiddleware())
	}
}
