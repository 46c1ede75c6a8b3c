package apiHttp

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/quepay/backend/docs"
	"github.com/quepay/backend/internal/config"
	"github.com/quepay/backend/internal/service"
	"github.com/quepay/backend/pkg/limiter"
	"github.com/quepay/backend/pkg/logger"
	"github.com/quepay/backend/pkg/validator"

	"github.com/gin-gonic/gin"
)

// @title Quepay Auth API
// @version 1.0
// @description Signup, login and email verification API for Quepay.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

type Handler struct {
	services *service.Services
	config   *config.Config
}

func NewHandlers(services *service.Services, cfg *config.Config) *Handler {
	return &Handler{
		services: services,
		config:   cfg,
	}
}

func (h *Handler) Init(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	validator.RegisterGinValidator()

	router.Use(
		ginzap.Ginzap(logger.Logger(), time.RFC3339, true),
		limiter.Limit(cfg.Limiter.RPS, cfg.Limiter.Burst, cfg.Limiter.TTL),
		corsMiddleware,
	)
	router.Use(ginzap.RecoveryWithZap(logger.Logger(), true))

	if cfg.HttpServer.SwaggerEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h.initRoutes(router)

	return router
}
