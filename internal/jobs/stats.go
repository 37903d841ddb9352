package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/notification"
	"gw-fund-subscriptions/pkg"
)

// ConsumerStats источник счетчиков обработки сообщений
type ConsumerStats interface {
	GetStatistics() map[string]interface{}
}

// StorageStats источник агрегированной статистики уведомлений
type StorageStats interface {
	GetStatistics(ctx context.Context) (*notification.Statistics, error)
}

// StatsJob задача вывода статистики сервиса уведомлений
func StatsJob(consumer ConsumerStats, storage StorageStats, logger *logrus.Logger) func(ctx context.Context) {
	return func(ctx context.Context) {
		LogStatistics(ctx, consumer, storage, logger)
	}
}

// LogStatistics выводит текущую статистику consumer и хранилища
func LogStatistics(ctx context.Context, consumer ConsumerStats, storage StorageStats, logger *logrus.Logger) {
	processed, failed, uptime := consumerCounters(consumer)

	logger.WithFields(logrus.Fields{
		"processed": processed,
		"failed":    failed,
		"rate":      pkg.FormatRate(processed, uptime),
		"uptime":    pkg.FormatDuration(uptime),
	}).Info("Consumer statistics")

	stats, err := storage.GetStatistics(ctx)
	if err != nil {
		logger.Warnf("Failed to get storage statistics: %v", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"sent":         stats.TotalSent,
		"failed":       stats.TotalFailed,
		"avg_amount":   stats.AverageAmount.StringFixed(2),
		"total_amount": stats.TotalAmount.StringFixed(2),
	}).Info("Notification storage statistics")
}

func consumerCounters(consumer ConsumerStats) (int64, int64, time.Duration) {
	stats := consumer.GetStatistics()

	processed, _ := stats["messages_processed"].(int64)
	failed, _ := stats["messages_failed"].(int64)
	seconds, _ := stats["uptime_seconds"].(float64)

	return processed, failed, time.Duration(seconds * float64(time.Second))
}
