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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/quizbank-api/internal/bootstrap"
	"github.com/yourusername/quizbank-api/internal/config"
	"github.com/yourusername/quizbank-api/internal/handler"
	"github.com/yourusername/quizbank-api/internal/logger"
	"github.com/yourusername/quizbank-api/internal/middleware"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		os.Exit(1)
	}
	defer logger.Sync()
	lg := logger.Get()
	lg.Info("configuration loaded", zap.String("path", configPath), zap.String("driver", cfg.Database.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, err := bootstrap.OpenRepositories(ctx, cfg)
	if err != nil {
		lg.Fatal("failed to open repositories", zap.Error(err))
	}
	defer repos.Close()

	svcs, err := bootstrap.NewServices(cfg, repos)
	if err != nil {
		lg.Fatal("failed to initialize services", zap.Error(err))
	}
	if err := bootstrap.EnsureAdmin(ctx, cfg.Admin, svcs.User); err != nil {
		lg.Fatal("failed to ensure admin account", zap.Error(err))
	}

	isProduction := cfg.Logger.Env == "production"
	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Production sits behind no trusted proxy; locally only loopback is trusted.
	trusted := []string{"127.0.0.1", "::1"}
	if isProduction {
		trusted = nil
	}
	if err := router.SetTrustedProxies(trusted); err != nil {
		lg.Fatal("failed to set trusted proxies", zap.Error(err))
	}

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	handler.RegisterRoutes(router, handler.Router{
		Auth:             middleware.NewAuthMiddleware(svcs.JWT, repos.Users),
		RateLimiter:      middleware.NewRateLimiter(repos.Redis),
		AuthHandler:      handler.NewAuthHandler(svcs.User, svcs.JWT),
		GenreHandler:     handler.NewGenreHandler(svcs.Genre),
		QuestionHandler:  handler.NewQuestionHandler(svcs.Question),
		UserHandler:      handler.NewUserHandler(svcs.User),
		StatsHandler:     handler.NewStatsHandler(svcs.Stats),
		TransferHandler:  handler.NewTransferHandler(svcs.Transfer),
		CSVRatePerMinute: cfg.CSV.RateLimitPerMin,
		MaxUploadMB:      cfg.Server.MaxUploadMB,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		lg.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
		return
	}
	lg.Info("server exited properly")
}
