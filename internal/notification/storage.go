package notification

import "context"

// Storage определяет интерфейс архива уведомлений
type Storage interface {
	// SaveBatch сохраняет пакет уведомлений; повторно доставленные события пропускаются
	SaveBatch(ctx context.Context, notifications []Notification) error

	// GetByTransaction получает уведомление по ID транзакции
	GetByTransaction(ctx context.Context, transactionID string) (*Notification, error)

	// GetByUser получает уведомления пользователя
	GetByUser(ctx context.Context, user string, limit int) ([]Notification, error)

	// GetStatistics возвращает статистику обработки
	GetStatistics(ctx context.Context) (*Statistics, error)

	// Health check
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
