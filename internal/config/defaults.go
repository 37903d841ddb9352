package config

import "time"

// Server defaults
const (
	DefaultHTTPPort        = "8080"
	DefaultGinMode         = "release"
	DefaultCORSOrigins     = "*"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
)

// Store defaults
const (
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"

	DefaultStoreDriver       = DriverPostgres
	DefaultUsersTable        = "users"
	DefaultFundsTable        = "fondos"
	DefaultTransactionsTable = "transactions"
)

// Database defaults
const (
	DefaultDBHost            = "localhost"
	DefaultDBPort            = 5432
	DefaultDBUser            = "fund_user"
	DefaultDBPassword        = "fund_password"
	DefaultDBName            = "fund_db"
	DefaultDBSSLMode         = "disable"
	DefaultDBMaxOpenConns    = 25
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = 5 * time.Minute
	DefaultSeedFunds         = true
)

// DynamoDB defaults
const (
	DefaultDynamoRegion   = "us-east-1"
	DefaultDynamoEndpoint = ""
)

// Kafka defaults
const (
	DefaultKafkaBrokers           = "localhost:9092"
	DefaultKafkaTopic             = "fund-subscriptions"
	DefaultKafkaGroupID           = "notification-service-group"
	DefaultKafkaMinBytes          = 1
	DefaultKafkaMaxBytes          = 10485760 // 10MB
	DefaultKafkaMaxWait           = 500 * time.Millisecond
	DefaultKafkaAsync             = false
	DefaultKafkaEnsureTopic       = true
	DefaultKafkaPartitions        = 3
	DefaultKafkaReplicationFactor = 1
)

// MongoDB defaults
const (
	DefaultMongoURI         = "mongodb://localhost:27017"
	DefaultMongoDatabase    = "notification_db"
	DefaultMongoCollection  = "subscription_notifications"
	DefaultMongoTimeout     = 10 * time.Second
	DefaultMongoMaxPoolSize = 100
	DefaultMongoMinPoolSize = 10
)

// Processing defaults
const (
	DefaultBatchSize         = 100
	DefaultWorkers           = 10
	DefaultFlushInterval     = 5 * time.Second
	DefaultMaxProcessingTime = 30 * time.Second
	DefaultRetryAttempts     = 3
	DefaultRetryDelay        = 1 * time.Second
)

// Catalog gRPC defaults
const (
	DefaultCatalogHost     = "localhost"
	DefaultCatalogPort     = "50051"
	DefaultCatalogTimeout  = 5 * time.Second
	DefaultCatalogCacheTTL = 5 * time.Minute
	DefaultCatalogEnabled  = true
)

// Ledger defaults
const (
	DefaultLedgerRetryAttempts = 3
)

// Jobs defaults
const (
	DefaultStatsSchedule = "*/5 * * * *"
)
