package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc/health/grpc_health_v1"
	"gw-fund-subscriptions/internal/config"
	"gw-fund-subscriptions/internal/grpc"
	"gw-fund-subscriptions/internal/logger"
	"gw-fund-subscriptions/internal/storages/factory"
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
	if err := cfg.ValidateCatalog(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	log := logger.New(cfg.Logger.Level)
	log.Info("Starting catalog service...")
	log.Infof("Configuration loaded from: %s", *configPath)

	// Подключение к хранилищу
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	storage, err := factory.Open(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer storage.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	if err := storage.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("Store ping failed: %v", err)
	}
	cancel()
	log.Info("Store connection established")

	// Создание gRPC сервера
	grpcSrv, healthSrv := grpc.NewServer(grpc.NewCatalogServer(storage, log), log)

	// Создание listener для gRPC
	listener, err := net.Listen("tcp", ":"+cfg.Catalog.Port)
	if err != nil {
		log.Fatalf("Failed to create listener: %v", err)
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Запуск gRPC сервера в горутине
	go func() {
		log.Infof("gRPC server is listening on port %s", cfg.Catalog.Port)
		if err := grpcSrv.Serve(listener); err != nil {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	// Ожидание сигнала завершения
	<-done
	log.Info("Shutting down server...")

	healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthSrv.Shutdown()
	grpcSrv.GracefulStop()
	log.Info("Server stopped gracefully")
}
