package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Config содержит конфигурацию для подключения к PostgreSQL
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SeedFunds       bool
}

// DSN строка подключения в формате lib/pq
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db     *sql.DB
	logger *logrus.Logger
}

// New создает новое подключение к PostgreSQL, применяет миграции и при необходимости
// заполняет каталог фондов
func New(cfg *Config, logger *logrus.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to PostgreSQL")

	storage := &PostgresStorage{
		db:     db,
		logger: logger,
	}

	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if cfg.SeedFunds {
		if err := storage.seedFunds(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed funds: %w", err)
		}
	}

	return storage, nil
}

// Close закрывает соединение с базой данных
func (s *PostgresStorage) Close() error {
	if s.db != nil {
		s.logger.Info("Closing database connection")
		return s.db.Close()
	}
	return nil
}

// Ping проверяет соединение с базой данных
func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
