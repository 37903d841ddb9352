package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gw-fund-subscriptions/internal/notification"
)

const duplicateKeyCode = 11000

// SaveBatch сохраняет пакет уведомлений.
// Вставка неупорядоченная: уже сохраненные transaction_id пропускаются, остальные записываются.
func (s *MongoStorage) SaveBatch(ctx context.Context, notifications []notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	documents := make([]interface{}, len(notifications))
	for i := range notifications {
		doc, err := toDocument(&notifications[i])
		if err != nil {
			s.logger.Errorf("Failed to map notification: %v", err)
			return fmt.Errorf("failed to map notification: %w", err)
		}
		documents[i] = doc
	}

	_, err := s.collection.InsertMany(ctx, documents, options.InsertMany().SetOrdered(false))
	skipped := 0
	if err != nil {
		var ok bool
		if skipped, ok = duplicates(err); !ok {
			s.logger.Errorf("Failed to save notification batch: %v", err)
			return fmt.Errorf("failed to save notification batch: %w", err)
		}
		s.logger.Infof("Skipped %d already stored notifications", skipped)
	}

	s.logger.Infof("Saved batch of %d notifications (inserted: %d)", len(notifications), len(notifications)-skipped)

	return nil
}

// duplicates возвращает число нарушений уникального индекса, если других ошибок вставки нет
func duplicates(err error) (int, bool) {
	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) {
		return 0, false
	}

	if bulkErr.WriteConcernError != nil || len(bulkErr.WriteErrors) == 0 {
		return 0, false
	}

	for _, writeErr := range bulkErr.WriteErrors {
		if writeErr.Code != duplicateKeyCode {
			return 0, false
		}
	}
	return len(bulkErr.WriteErrors), true
}

// GetByTransaction получает уведомление по ID транзакции
func (s *MongoStorage) GetByTransaction(ctx context.Context, transactionID string) (*notification.Notification, error) {
	var doc document
	err := s.collection.FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notification.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to get notification: %v", err)
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	n, err := doc.toNotification()
	if err != nil {
		return nil, fmt.Errorf("failed to decode notification: %w", err)
	}
	return &n, nil
}

// GetByUser получает последние уведомления пользователя
func (s *MongoStorage) GetByUser(ctx context.Context, user string, limit int) ([]notification.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "subscribed_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		s.logger.Errorf("Failed to query notifications: %v", err)
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var documents []document
	if err := cursor.All(ctx, &documents); err != nil {
		s.logger.Errorf("Failed to decode notifications: %v", err)
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	notifications := make([]notification.Notification, 0, len(documents))
	for i := range documents {
		n, err := documents[i].toNotification()
		if err != nil {
			return nil, fmt.Errorf("failed to decode notifications: %w", err)
		}
		notifications = append(notifications, n)
	}

	s.logger.Debugf("Retrieved %d notifications for user %s", len(notifications), user)
	return notifications, nil
}

// GetStatistics возвращает статистику обработки
func (s *MongoStorage) GetStatistics(ctx context.Context) (*notification.Statistics, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"total_sent":     countStatus(notification.StatusSent),
			"total_failed":   countStatus(notification.StatusFailed),
			"average_amount": bson.M{"$avg": bson.M{"$toDecimal": "$monto"}},
			"total_amount":   bson.M{"$sum": bson.M{"$toDecimal": "$monto"}},
			"last_processed": bson.M{"$max": "$processed_at"},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		s.logger.Errorf("Failed to get statistics: %v", err)
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		TotalSent       int64                 `bson:"total_sent"`
		TotalFailed     int64                 `bson:"total_failed"`
		AverageAmount   *primitive.Decimal128 `bson:"average_amount"`
		TotalAmount     *primitive.Decimal128 `bson:"total_amount"`
		LastProcessedAt time.Time             `bson:"last_processed"`
	}

	if err := cursor.All(ctx, &results); err != nil {
		s.logger.Errorf("Failed to decode statistics: %v", err)
		return nil, fmt.Errorf("failed to decode statistics: %w", err)
	}

	stats := &notification.Statistics{}
	if len(results) > 0 {
		stats.TotalSent = results[0].TotalSent
		stats.TotalFailed = results[0].TotalFailed
		stats.LastProcessedAt = results[0].LastProcessedAt

		if stats.AverageAmount, err = amount(results[0].AverageAmount); err != nil {
			return nil, fmt.Errorf("failed to decode average amount: %w", err)
		}
		if stats.TotalAmount, err = amount(results[0].TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to decode total amount: %w", err)
		}
	}

	return stats, nil
}

// amount переводит результат агрегации; null означает отсутствие сумм
func amount(d *primitive.Decimal128) (decimal.Decimal, error) {
	if d == nil {
		return decimal.Zero, nil
	}
	return fromDecimal128(*d)
}

func countStatus(status string) bson.M {
	return bson.M{
		"$sum": bson.M{
			"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", status}},
				1,
				0,
			},
		},
	}
}
