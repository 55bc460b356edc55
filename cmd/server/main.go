package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ama/internal/config"
	"ama/internal/db"
	"ama/internal/handlers"
	"ama/internal/metrics"
	"ama/internal/middleware"
	"ama/internal/redis"
	"ama/internal/repository"
	"ama/internal/router"
	"ama/internal/services"
	"ama/internal/utils"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Open(cfg, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	sqlDB, err := conn.DB()
	if err != nil {
		logger.Fatal("database handle", zap.Error(err))
	}
	defer sqlDB.Close()

	appMetrics := metrics.New()
	loc := cfg.Location()

	// Repositories and services
	userRepo := repository.NewUserRepository(conn)
	ama := services.NewAMAService(services.Repositories{
		Sessions:  repository.NewSessionRepository(conn),
		Questions: repository.NewQuestionRepository(conn),
		Comments:  repository.NewCommentRepository(conn),
	}, loc, logger, appMetrics)
	users := services.NewUserService(userRepo, logger)

	pageCache, err := utils.NewPageCache(256)
	if err != nil {
		logger.Fatal("page cache", zap.Error(err))
	}

	var limiter middleware.Limiter = middleware.NewRateLimiter()
	if cfg.RedisURL != "" {
		rdb, err := redis.NewClient(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting in memory", zap.Error(err))
		} else {
			defer rdb.Close()
			limiter = middleware.NewRedisRateLimiter(rdb.Client, logger.Named("ratelimit"))
			logger.Info("rate limiting with redis")
		}
	}

	var google *handlers.GoogleOAuth
	if cfg.GoogleEnabled() {
		google = handlers.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.SiteURL)
	}

	// Engine
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(appMetrics))
	r.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(config.SessionCookieName, store))
	r.Use(middleware.LoadUser(users, logger))

	renderer, err := handlers.LoadTemplates(cfg.TemplatesDir, loc)
	if err != nil {
		logger.Fatal("templates", zap.Error(err))
	}
	r.HTMLRender = renderer
	r.Static("/static", cfg.StaticDir)

	router.RegisterRoutes(r, router.Handlers{
		Sessions:    handlers.NewSessionHandler(ama, pageCache, logger),
		Auth:        handlers.NewAuthHandler(users, services.NewCaptchaService(), google, logger),
		API:         handlers.NewAPIHandler(ama, logger),
		SEO:         handlers.NewSEOHandler(ama, cfg.SiteURL, logger),
		Healthz:     handlers.Healthz(sqlDB.PingContext),
		Metrics:     appMetrics,
		RateLimit:   middleware.RateLimit(limiter, cfg.RateLimit(), logger.Named("ratelimit")),
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	return logger
}
