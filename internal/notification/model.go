package notification

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Event сообщение Kafka о новой подписке на фонд
type Event struct {
	TransactionID string          `json:"transaction_id"`
	User          string          `json:"user"`
	Correo        string          `json:"correo"`
	Telefono      string          `json:"telefono,omitempty"`
	Fondo         string          `json:"fondo"`
	Categoria     string          `json:"categoria,omitempty"`
	Monto         decimal.Decimal `json:"monto"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Notification уведомление клиенту; суммы хранятся как decimal
type Notification struct {
	ID            string          `json:"id,omitempty"`
	TransactionID string          `json:"transaction_id"`
	User          string          `json:"user"`
	Channel       string          `json:"channel"`
	Recipient     string          `json:"recipient"`
	Subject       string          `json:"subject"`
	Body          string          `json:"body"`
	Fondo         string          `json:"fondo"`
	Categoria     string          `json:"categoria,omitempty"`
	MontoMinimo   decimal.Decimal `json:"monto_minimo"`
	Monto         decimal.Decimal `json:"monto"`
	SubscribedAt  time.Time       `json:"subscribed_at"`
	ProcessedAt   time.Time       `json:"processed_at"`
	Status        string          `json:"status"`
	ErrorMessage  string          `json:"error_message,omitempty"`
}

// Каналы доставки
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Статусы обработки
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Statistics представляет статистику обработки
type Statistics struct {
	TotalSent       int64           `json:"total_sent"`
	TotalFailed     int64           `json:"total_failed"`
	LastProcessedAt time.Time       `json:"last_processed_at"`
	AverageAmount   decimal.Decimal `json:"average_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// ErrNotFound уведомление не найдено
var ErrNotFound = errors.New("notification not found")
