package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"
	"gw-fund-subscriptions/internal/config"
	"gw-fund-subscriptions/internal/kafka"
	fundlambda "gw-fund-subscriptions/internal/lambda"
	"gw-fund-subscriptions/internal/logger"
	"gw-fund-subscriptions/internal/metrics"
	"gw-fund-subscriptions/internal/service"
	"gw-fund-subscriptions/internal/storages/factory"
)

func main() {
	// Lambda получает конфигурацию только из окружения
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.ValidateLambda(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logger.Level)
	log.Infof("Starting fund-lambda, store driver: %s", cfg.Store.Driver)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	storage, err := factory.Open(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	// Реестр не публикуется: Lambda не обслуживает /metrics
	m := metrics.New(prometheus.NewRegistry())

	producer := kafka.NewProducer(&kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, m, log)

	fundService := service.NewFundService(storage, producer, m, cfg.Ledger.RetryAttempts, log)
	handler := fundlambda.NewHandler(fundService, log)

	lambda.Start(handler.Handle)
}
