package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/cache"
	"gw-fund-subscriptions/internal/config"
	"gw-fund-subscriptions/internal/grpc"
	"gw-fund-subscriptions/internal/jobs"
	"gw-fund-subscriptions/internal/kafka"
	"gw-fund-subscriptions/internal/logger"
	"gw-fund-subscriptions/internal/notification"
	"gw-fund-subscriptions/internal/notification/mongodb"
	"gw-fund-subscriptions/pkg"
)

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
	if err := cfg.ValidateNotification(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	log := logger.New(cfg.Logger.Level)
	log.Info("Starting notification service...")
	log.Infof("Configuration loaded from: %s", *configPath)

	// Подключение к MongoDB
	storage, err := mongodb.New(&mongodb.Config{
		URI:         cfg.MongoDB.URI,
		Database:    cfg.MongoDB.Database,
		Collection:  cfg.MongoDB.Collection,
		Timeout:     cfg.MongoDB.Timeout,
		MaxPoolSize: cfg.MongoDB.MaxPoolSize,
		MinPoolSize: cfg.MongoDB.MinPoolSize,
	}, log)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		storage.Close(ctx)
	}()

	// Проверка подключения к MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := storage.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("MongoDB ping failed: %v", err)
	}
	cancel()
	log.Info("MongoDB connection established")

	// Каталог фондов для обогащения уведомлений
	var catalog notification.FundLookup
	if cfg.Catalog.Enabled {
		client, err := grpc.NewCatalogClient(
			cfg.Catalog.Host,
			cfg.Catalog.Port,
			cfg.Catalog.Timeout,
			cache.NewFundCache(cfg.Catalog.CacheTTL),
			log,
		)
		if err != nil {
			log.Fatalf("Failed to connect to catalog service: %v", err)
		}
		defer client.Close()

		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx); err != nil {
			log.Warnf("Catalog service ping failed: %v (service may be unavailable)", err)
		} else {
			log.Info("Connected to catalog service")
		}
		cancel()

		catalog = client
	}

	notifier := notification.NewService(storage, catalog, notification.NewLogSender(log), log)

	// Создание Kafka consumer
	consumer := kafka.NewConsumer(&kafka.ConsumerConfig{
		Brokers:           cfg.Kafka.Brokers,
		Topic:             cfg.Kafka.Topic,
		GroupID:           cfg.Kafka.GroupID,
		MinBytes:          cfg.Kafka.MinBytes,
		MaxBytes:          cfg.Kafka.MaxBytes,
		MaxWait:           cfg.Kafka.MaxWait,
		BatchSize:         cfg.Processing.BatchSize,
		Workers:           cfg.Processing.Workers,
		FlushInterval:     cfg.Processing.FlushInterval,
		MaxProcessingTime: cfg.Processing.MaxProcessingTime,
		RetryAttempts:     cfg.Processing.RetryAttempts,
		RetryDelay:        cfg.Processing.RetryDelay,
	}, notifier, log)
	defer consumer.Close()

	// Периодическая статистика
	scheduler := jobs.New(5*time.Second, log)
	if err := scheduler.AddJob("stats", cfg.Jobs.StatsSchedule, jobs.StatsJob(consumer, storage, log)); err != nil {
		log.Fatalf("Failed to schedule statistics: %v", err)
	}
	scheduler.Start()

	// Контекст для graceful shutdown
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	// Обработка сигналов завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Запуск consumer в горутине
	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Start(ctx)
	}()

	log.Info("Service is running. Press Ctrl+C to stop...")

	// Ожидание сигнала завершения или ошибки
	select {
	case <-sigChan:
		log.Info("Received shutdown signal...")
	case err := <-consumerErr:
		if err != nil {
			log.Errorf("Consumer error: %v", err)
		}
	}

	log.Info("Shutting down service...")
	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Processing.MaxProcessingTime)
	defer shutdownCancel()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded, forcing exit")
	case err := <-consumerErr:
		if err != nil && err != context.Canceled {
			log.Errorf("Consumer shutdown error: %v", err)
		}
	}

	printFinalStatistics(log, consumer, storage)

	log.Info("Service stopped gracefully")
}

// printFinalStatistics выводит финальную статистику перед завершением
func printFinalStatistics(log *logrus.Logger, consumer *kafka.Consumer, storage *mongodb.MongoStorage) {
	log.Info("=== Final Statistics ===")

	stats := consumer.GetStatistics()
	uptime := time.Duration(stats["uptime_seconds"].(float64) * float64(time.Second))

	log.Infof("Total Messages Processed: %d", stats["messages_processed"])
	log.Infof("Total Messages Failed: %d", stats["messages_failed"])
	log.Infof("Average Processing Rate: %.2f msg/s", stats["processing_rate"])
	log.Infof("Total Uptime: %s", pkg.FormatDuration(uptime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	storageStats, err := storage.GetStatistics(ctx)
	if err != nil {
		log.Warnf("Failed to get final storage statistics: %v", err)
		return
	}

	log.Infof("Notifications sent: %d, failed: %d", storageStats.TotalSent, storageStats.TotalFailed)
	log.Infof("Average Subscription Amount: %s", storageStats.AverageAmount.StringFixed(2))
	log.Infof("Total Amount Subscribed: %s", storageStats.TotalAmount.StringFixed(2))
	log.Info("========================")
}
