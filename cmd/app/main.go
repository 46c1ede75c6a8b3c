package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	apiHttp "github.com/quepay/backend/internal/api/http"
	"github.com/quepay/backend/internal/cache"
	"github.com/quepay/backend/internal/config"
	"github.com/quepay/backend/internal/db"
	"github.com/quepay/backend/internal/queue/asynqserver"
	"github.com/quepay/backend/internal/queue/client"
	"github.com/quepay/backend/internal/repository"
	"github.com/quepay/backend/internal/server"
	"github.com/quepay/backend/internal/service"
	"github.com/quepay/backend/internal/worker"
	"github.com/quepay/backend/pkg/auth"
	"github.com/quepay/backend/pkg/email/smtp"
	"github.com/quepay/backend/pkg/hash"
	"github.com/quepay/backend/pkg/logger"
	"github.com/quepay/backend/pkg/otp"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	// Dependencies
	appLogger := logger.SetupLogger(cfg.Env, cfg.LogLevel)

	appLogger.Info("starting quepay auth api", zap.String("env", cfg.Env))
	appLogger.Debug("debug messages are enabled")

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		appLogger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			appLogger.Error("error when closing", zap.Error(err))
		}
	}()
	appLogger.Info("mysql connection done")

	// Redis backs the email delivery queue
	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		appLogger.Error("redis connect problem", zap.Error(err))
		os.Exit(1)
	}

	hasher := hash.NewSHA256Hasher(cfg.Auth.PasswordSalt)

	emailSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
	if err != nil {
		appLogger.Error("smtp sender creation failed", zap.Error(err))
		return
	}

	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	if err != nil {
		appLogger.Error("auth manager creation err", zap.Error(err))
		return
	}

	codeGenerator := otp.NewCodeGenerator()

	emailDispatcher := client.NewDispatcher(redisClient)
	defer func() {
		if err := emailDispatcher.Close(); err != nil {
			appLogger.Error("email dispatcher close failed", zap.Error(err))
		}
	}()

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL)
	services := service.NewServices(service.Deps{
		Hasher:          hasher,
		TokenManager:    tokenManager,
		CodeGenerator:   codeGenerator,
		EmailDispatcher: emailDispatcher,
		Repos:           repos,
	})
	handlers := apiHttp.NewHandlers(services, cfg)

	// Queue server delivering verification emails
	workers := worker.NewWorkers(worker.Deps{
		EmailProvider: emailSender,
		Config:        cfg,
	})
	queueSrv, queueMux := asynqserver.New(redisClient, workers)
	if err := queueSrv.Start(queueMux); err != nil {
		appLogger.Error("queue server start failed", zap.Error(err))
		os.Exit(1)
	}

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	appLogger.Info("server started")

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	if err := srv.Stop(ctx); err != nil {
		appLogger.Error("failed to stop server", zap.Error(err))
	}

	queueSrv.Shutdown()

	appLogger.Info("app stopped")
}
