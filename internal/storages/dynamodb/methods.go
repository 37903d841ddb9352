package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"gw-fund-subscriptions/internal/storages"
)

// ListFunds сканирует всю таблицу фондов
func (s *DynamoStorage) ListFunds(ctx context.Context) ([]storages.Fund, error) {
	items, err := s.scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.cfg.FundsTable),
	})
	if err != nil {
		s.logger.Errorf("Failed to scan funds: %v", err)
		return nil, fmt.Errorf("failed to scan funds: %w", err)
	}

	funds := make([]storages.Fund, 0, len(items))
	for _, it := range items {
		fund, err := decodeFund(it)
		if err != nil {
			return nil, fmt.Errorf("failed to decode fund: %w", err)
		}
		funds = append(funds, *fund)
	}

	return funds, nil
}

// GetFund возвращает фонд по ключу (nombre, categoria)
func (s *DynamoStorage) GetFund(ctx context.Context, nombre, categoria string) (*storages.Fund, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.cfg.FundsTable),
		Key:       fundKey(nombre, categoria),
	})
	if err != nil {
		s.logger.Errorf("Failed to get fund: %v", err)
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}

	if len(out.Item) == 0 {
		return nil, storages.ErrNotFound
	}

	return decodeFund(out.Item)
}

// GetUser возвращает пользователя по составному ключу
func (s *DynamoStorage) GetUser(ctx context.Context, key storages.UserKey) (*storages.User, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.cfg.UsersTable),
		Key:            userKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		s.logger.Errorf("Failed to get user: %v", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if len(out.Item) == 0 {
		return nil, storages.ErrNotFound
	}

	return decodeUser(out.Item)
}

// FindUserByCedula ищет пользователя по ключу раздела cedula
func (s *DynamoStorage) FindUserByCedula(ctx context.Context, cedula string) (*storages.User, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.cfg.UsersTable),
		KeyConditionExpression: aws.String("cedula = :cedula"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cedula": stringValue(cedula),
		},
		Limit:          aws.Int32(1),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		s.logger.Errorf("Failed to query user: %v", err)
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if len(out.Items) == 0 {
		return nil, storages.ErrNotFound
	}

	return decodeUser(out.Items[0])
}

// CreateUser создает пользователя, если записи с таким ключом еще нет
func (s *DynamoStorage) CreateUser(ctx context.Context, user *storages.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.cfg.UsersTable),
		Item:                encodeUser(user),
		ConditionExpression: aws.String("attribute_not_exists(cedula)"),
	})

	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return storages.ErrAlreadyExists
	}

	if err != nil {
		s.logger.Errorf("Failed to create user: %v", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infof("Created user: cedula=%s", user.Cedula)
	return nil
}

// ListUserTransactions возвращает все записи журнала пользователя
func (s *DynamoStorage) ListUserTransactions(ctx context.Context, user string) ([]storages.Transaction, error) {
	return s.scanTransactions(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(s.cfg.TransactionsTable),
		FilterExpression:         aws.String("#u = :user"),
		ExpressionAttributeNames: map[string]string{"#u": attrUser},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user": stringValue(user),
		},
	})
}

// ListPositionEntries возвращает записи журнала по паре (пользователь, фонд)
func (s *DynamoStorage) ListPositionEntries(ctx context.Context, user, fondo string) ([]storages.Transaction, error) {
	return s.scanTransactions(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.cfg.TransactionsTable),
		FilterExpression: aws.String("#u = :user AND #f = :fondo"),
		ExpressionAttributeNames: map[string]string{
			"#u": attrUser,
			"#f": attrFondo,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user":  stringValue(user),
			":fondo": stringValue(fondo),
		},
		ConsistentRead: aws.Bool(true),
	})
}

func (s *DynamoStorage) scanTransactions(ctx context.Context, input *dynamodb.ScanInput) ([]storages.Transaction, error) {
	items, err := s.scan(ctx, input)
	if err != nil {
		s.logger.Errorf("Failed to scan transactions: %v", err)
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}

	transactions := make([]storages.Transaction, 0, len(items))
	for _, it := range items {
		tx, err := decodeTransaction(it)
		if err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}

	// Порядок сканирования не определен, журнал упорядочиваем по времени создания
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.Before(transactions[j].CreatedAt)
	})

	return transactions, nil
}

// scan читает все страницы результата
func (s *DynamoStorage) scan(ctx context.Context, input *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue

	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}

	return items, nil
}
