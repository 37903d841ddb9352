package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gw-fund-subscriptions/internal/api"
	"gw-fund-subscriptions/internal/config"
	"gw-fund-subscriptions/internal/kafka"
	"gw-fund-subscriptions/internal/logger"
	"gw-fund-subscriptions/internal/metrics"
	"gw-fund-subscriptions/internal/service"
	"gw-fund-subscriptions/internal/storages/factory"
)

// @title Fund Subscriptions API
// @version 1.0
// @description API for mutual fund subscriptions and the position ledger
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	// Парсинг флагов командной строки
	configPath := flag.String("c", "", "Path to config file")
	flag.Parse()

	// Загрузка конфигурации
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Валидация конфигурации
	if err := cfg.ValidateAPI(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	log := logger.New(cfg.Logger.Level)
	log.Info("Starting fund-api service...")
	log.Infof("Configuration loaded from: %s, store driver: %s", *configPath, cfg.Store.Driver)

	// Подключение к хранилищу
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	storage, err := factory.Open(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer storage.Close()

	// Проверка подключения к хранилищу
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	if err := storage.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("Store ping failed: %v", err)
	}
	cancel()
	log.Info("Store connection established")

	// Топик уведомлений
	if cfg.Kafka.EnsureTopic {
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		err := kafka.EnsureTopic(ctx, &kafka.TopicConfig{
			Brokers:           cfg.Kafka.Brokers,
			Topic:             cfg.Kafka.Topic,
			Partitions:        cfg.Kafka.Partitions,
			ReplicationFactor: cfg.Kafka.ReplicationFactor,
		}, log)
		cancel()
		if err != nil {
			log.Warnf("Failed to ensure Kafka topic: %v (broker may be unavailable)", err)
		}
	}

	// Метрики
	m := metrics.New(prometheus.NewRegistry())

	// Инициализация Kafka producer
	producer := kafka.NewProducer(&kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		Async:   cfg.Kafka.Async,
	}, m, log)
	defer producer.Close()

	// Создание сервисного слоя
	fundService := service.NewFundService(storage, producer, m, cfg.Ledger.RetryAttempts, log)
	log.Info("Fund service initialized")

	// Настройка роутера
	router := api.SetupRouter(fundService, storage, m, log, cfg.Server.GinMode)

	// Создание HTTP сервера
	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      api.WithCORS(router, cfg.Server.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Запуск HTTP сервера в горутине
	go func() {
		log.Infof("HTTP server is listening on port %s", cfg.Server.HTTPPort)
		log.Infof("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Ожидание сигнала завершения
	<-done
	log.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
