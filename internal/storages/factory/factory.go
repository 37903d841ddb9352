package factory

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/config"
	"gw-fund-subscriptions/internal/storages"
	"gw-fund-subscriptions/internal/storages/dynamodb"
	"gw-fund-subscriptions/internal/storages/postgres"
)

// Open создает хранилище по драйверу из конфигурации
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (storages.Storage, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		store, err := postgres.New(&postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SeedFunds:       cfg.Database.SeedFunds,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverDynamoDB:
		store, err := dynamodb.New(ctx, &dynamodb.Config{
			Region:            cfg.DynamoDB.Region,
			Endpoint:          cfg.DynamoDB.Endpoint,
			UsersTable:        cfg.Store.UsersTable,
			FundsTable:        cfg.Store.FundsTable,
			TransactionsTable: cfg.Store.TransactionsTable,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.Store.Driver)
	}
}
