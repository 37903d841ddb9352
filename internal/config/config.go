package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Database   DatabaseConfig
	DynamoDB   DynamoDBConfig
	Kafka      KafkaConfig
	MongoDB    MongoDBConfig
	Processing ProcessingConfig
	Catalog    CatalogConfig
	Ledger     LedgerConfig
	Jobs       JobsConfig
	Logger     LoggerConfig
}

// ServerConfig содержит конфигурацию HTTP сервера
type ServerConfig struct {
	HTTPPort        string
	GinMode         string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig выбирает хранилище и имена коллекций
type StoreConfig struct {
	Driver            string
	UsersTable        string
	FundsTable        string
	TransactionsTable string
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
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

// DynamoDBConfig содержит конфигурацию DynamoDB
type DynamoDBConfig struct {
	Region   string
	Endpoint string
}

// KafkaConfig содержит конфигурацию Kafka
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	GroupID           string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	Async             bool
	EnsureTopic       bool
	Partitions        int
	ReplicationFactor int
}

// MongoDBConfig содержит конфигурацию MongoDB
type MongoDBConfig struct {
	URI         string
	Database    string
	Collection  string
	Timeout     time.Duration
	MaxPoolSize uint64
	MinPoolSize uint64
}

// ProcessingConfig содержит конфигурацию обработки
type ProcessingConfig struct {
	BatchSize         int
	Workers           int
	FlushInterval     time.Duration
	MaxProcessingTime time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// CatalogConfig содержит конфигурацию gRPC каталога фондов
type CatalogConfig struct {
	Host     string
	Port     string
	Timeout  time.Duration
	CacheTTL time.Duration
	Enabled  bool
}

// LedgerConfig содержит конфигурацию журнала операций
type LedgerConfig struct {
	RetryAttempts int
}

// JobsConfig содержит расписания периодических задач
type JobsConfig struct {
	StatsSchedule string
}

// LoggerConfig содержит конфигурацию логгера
type LoggerConfig struct {
	Level string
}

// Load загружает конфигурацию из файла окружения
func Load(configPath string) (*Config, error) {
	if configPath != "" {
		if err := godotenv.Load(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg := &Config{}

	// Server
	cfg.Server.HTTPPort = getEnv("HTTP_PORT", DefaultHTTPPort)
	cfg.Server.GinMode = getEnv("GIN_MODE", DefaultGinMode)
	cfg.Server.CORSOrigins = getEnvList("CORS_ALLOWED_ORIGINS", DefaultCORSOrigins)
	cfg.Server.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", DefaultReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", DefaultWriteTimeout)
	cfg.Server.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout)

	// Store
	cfg.Store.Driver = strings.ToLower(getEnv("STORE_DRIVER", DefaultStoreDriver))
	cfg.Store.UsersTable = getEnv("USERS_TABLE", DefaultUsersTable)
	cfg.Store.FundsTable = getEnv("FUNDS_TABLE", DefaultFundsTable)
	cfg.Store.TransactionsTable = getEnv("TRANSACTIONS_TABLE", DefaultTransactionsTable)

	// Database
	cfg.Database.Host = getEnv("DB_HOST", DefaultDBHost)
	cfg.Database.Port = getEnvInt("DB_PORT", DefaultDBPort)
	cfg.Database.User = getEnv("DB_USER", DefaultDBUser)
	cfg.Database.Password = getEnv("DB_PASSWORD", DefaultDBPassword)
	cfg.Database.DBName = getEnv("DB_NAME", DefaultDBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", DefaultDBSSLMode)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", DefaultDBMaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", DefaultDBMaxIdleConns)
	cfg.Database.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", DefaultDBConnMaxLifetime)
	cfg.Database.SeedFunds = getEnvBool("SEED_FUNDS", DefaultSeedFunds)

	// DynamoDB
	cfg.DynamoDB.Region = getEnv("AWS_REGION", DefaultDynamoRegion)
	cfg.DynamoDB.Endpoint = getEnv("DYNAMODB_ENDPOINT", DefaultDynamoEndpoint)

	// Kafka
	cfg.Kafka.Brokers = getEnvList("KAFKA_BROKERS", DefaultKafkaBrokers)
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", DefaultKafkaTopic)
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", DefaultKafkaGroupID)
	cfg.Kafka.MinBytes = getEnvInt("KAFKA_MIN_BYTES", DefaultKafkaMinBytes)
	cfg.Kafka.MaxBytes = getEnvInt("KAFKA_MAX_BYTES", DefaultKafkaMaxBytes)
	cfg.Kafka.MaxWait = getEnvDuration("KAFKA_MAX_WAIT", DefaultKafkaMaxWait)
	cfg.Kafka.Async = getEnvBool("KAFKA_ASYNC", DefaultKafkaAsync)
	cfg.Kafka.EnsureTopic = getEnvBool("KAFKA_ENSURE_TOPIC", DefaultKafkaEnsureTopic)
	cfg.Kafka.Partitions = getEnvInt("KAFKA_PARTITIONS", DefaultKafkaPartitions)
	cfg.Kafka.ReplicationFactor = getEnvInt("KAFKA_REPLICATION_FACTOR", DefaultKafkaReplicationFactor)

	// MongoDB
	cfg.MongoDB.URI = getEnv("MONGO_URI", DefaultMongoURI)
	cfg.MongoDB.Database = getEnv("MONGO_DATABASE", DefaultMongoDatabase)
	cfg.MongoDB.Collection = getEnv("MONGO_COLLECTION", DefaultMongoCollection)
	cfg.MongoDB.Timeout = getEnvDuration("MONGO_TIMEOUT", DefaultMongoTimeout)
	cfg.MongoDB.MaxPoolSize = uint64(getEnvInt("MONGO_MAX_POOL_SIZE", DefaultMongoMaxPoolSize))
	cfg.MongoDB.MinPoolSize = uint64(getEnvInt("MONGO_MIN_POOL_SIZE", DefaultMongoMinPoolSize))

	// Processing
	cfg.Processing.BatchSize = getEnvInt("BATCH_SIZE", DefaultBatchSize)
	cfg.Processing.Workers = getEnvInt("WORKERS", DefaultWorkers)
	cfg.Processing.FlushInterval = getEnvDuration("FLUSH_INTERVAL", DefaultFlushInterval)
	cfg.Processing.MaxProcessingTime = getEnvDuration("MAX_PROCESSING_TIME", DefaultMaxProcessingTime)
	cfg.Processing.RetryAttempts = getEnvInt("RETRY_ATTEMPTS", DefaultRetryAttempts)
	cfg.Processing.RetryDelay = getEnvDuration("RETRY_DELAY", DefaultRetryDelay)

	// Catalog gRPC
	cfg.Catalog.Host = getEnv("CATALOG_GRPC_HOST", DefaultCatalogHost)
	cfg.Catalog.Port = getEnv("CATALOG_GRPC_PORT", DefaultCatalogPort)
	cfg.Catalog.Timeout = getEnvDuration("CATALOG_GRPC_TIMEOUT", DefaultCatalogTimeout)
	cfg.Catalog.CacheTTL = getEnvDuration("CACHE_FUNDS_TTL", DefaultCatalogCacheTTL)
	cfg.Catalog.Enabled = getEnvBool("CATALOG_ENABLED", DefaultCatalogEnabled)

	// Ledger
	cfg.Ledger.RetryAttempts = getEnvInt("LEDGER_RETRY_ATTEMPTS", DefaultLedgerRetryAttempts)

	// Jobs
	cfg.Jobs.StatsSchedule = getEnv("STATS_SCHEDULE", DefaultStatsSchedule)

	// Logger
	cfg.Logger.Level = getEnv("LOG_LEVEL", DefaultLogLevel)

	return cfg, nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленную переменную окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool получает булеву переменную окружения
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения типа duration
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList разбивает значение по запятой, пропуская пустые элементы
func getEnvList(key, defaultValue string) []string {
	var result []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func (c *Config) validateCommon() error {
	if _, err := logrus.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Logger.Level)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
	case DriverDynamoDB:
		if c.DynamoDB.Region == "" {
			return fmt.Errorf("AWS_REGION is required")
		}
		if c.Store.UsersTable == "" || c.Store.FundsTable == "" || c.Store.TransactionsTable == "" {
			return fmt.Errorf("table names must not be empty")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %q", c.Store.Driver)
	}
	return nil
}

func (c *Config) validateLedger() error {
	if c.Ledger.RetryAttempts <= 0 {
		return fmt.Errorf("LEDGER_RETRY_ATTEMPTS must be positive")
	}
	return nil
}

// ValidateAPI проверяет конфигурацию HTTP API
func (c *Config) ValidateAPI() error {
	if err := c.validateCommon(); err != nil {
		return err
	}

	if c.Server.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	if c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required")
	}

	if err := c.validateLedger(); err != nil {
		return err
	}

	return c.validateStore()
}

// ValidateLambda проверяет конфигурацию Lambda функции
func (c *Config) ValidateLambda() error {
	if err := c.validateCommon(); err != nil {
		return err
	}

	if err := c.validateLedger(); err != nil {
		return err
	}

	return c.validateStore()
}

// ValidateCatalog проверяет конфигурацию gRPC каталога
func (c *Config) ValidateCatalog() error {
	if err := c.validateCommon(); err != nil {
		return err
	}

	if c.Catalog.Port == "" {
		return fmt.Errorf("CATALOG_GRPC_PORT is required")
	}

	return c.validateStore()
}

// ValidateNotification проверяет конфигурацию сервиса уведомлений
func (c *Config) ValidateNotification() error {
	if err := c.validateCommon(); err != nil {
		return err
	}

	if c.MongoDB.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}

	if c.MongoDB.Database == "" {
		return fmt.Errorf("MONGO_DATABASE is required")
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	if c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required")
	}

	if c.Processing.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive")
	}

	if c.Processing.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive")
	}

	if c.Processing.RetryAttempts <= 0 {
		return fmt.Errorf("RETRY_ATTEMPTS must be positive")
	}

	if c.Processing.FlushInterval <= 0 {
		return fmt.Errorf("FLUSH_INTERVAL must be positive")
	}

	if _, err := cron.ParseStandard(c.Jobs.StatsSchedule); err != nil {
		return fmt.Errorf("invalid STATS_SCHEDULE %q: %w", c.Jobs.StatsSchedule, err)
	}

	return nil
}
