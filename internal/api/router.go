package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "gw-fund-subscriptions/docs"
	"gw-fund-subscriptions/internal/api/handlers"
	"gw-fund-subscriptions/internal/api/middleware"
	"gw-fund-subscriptions/internal/metrics"
)

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRouter настраивает и возвращает роутер с всеми эндпоинтами
func SetupRouter(
	fundService handlers.FundService,
	store Pinger,
	m *metrics.Metrics,
	logger *logrus.Logger,
	ginMode string,
) *gin.Engine {
	gin.SetMode(ginMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	if m != nil {
		router.Use(middleware.Metrics(m))
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.Warnf("Health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	fundHandler := handlers.NewFundHandler(fundService, logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(fundService, logger)
	transactionHandler := handlers.NewTransactionHandler(fundService, logger)

	router.GET("/fondos", fundHandler.ListFunds)
	router.POST("/subscribe", subscriptionHandler.Subscribe)
	router.GET("/transactions", transactionHandler.ListTransactions)
	router.POST("/transactions", transactionHandler.RecordTransaction)

	return router
}

// WithCORS оборачивает обработчик политикой CORS для веб-клиента
func WithCORS(handler http.Handler, allowedOrigins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	})(handler)
}
