package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"
)

// Config содержит конфигурацию для подключения к DynamoDB
type Config struct {
	Region            string
	Endpoint          string
	UsersTable        string
	FundsTable        string
	TransactionsTable string
}

// API подмножество клиента DynamoDB, используемое хранилищем
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoStorage реализует интерфейс Storage для DynamoDB
type DynamoStorage struct {
	client API
	cfg    Config
	logger *logrus.Logger
}

// New создает клиент DynamoDB из стандартной цепочки учетных данных AWS
func New(ctx context.Context, cfg *Config, logger *logrus.Logger) (*DynamoStorage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Infof("DynamoDB client initialized: region=%s, endpoint=%q", cfg.Region, cfg.Endpoint)

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient создает хранилище поверх готового клиента
func NewWithClient(client API, cfg *Config, logger *logrus.Logger) *DynamoStorage {
	return &DynamoStorage{
		client: client,
		cfg:    *cfg,
		logger: logger,
	}
}

// Ping проверяет доступность таблицы пользователей
func (s *DynamoStorage) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.cfg.UsersTable),
	})
	return err
}

// Close ничего не делает: HTTP клиент SDK не требует закрытия
func (s *DynamoStorage) Close() error {
	return nil
}
