package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/storages"
)

// FundLookup источник данных каталога для обогащения уведомлений
type FundLookup interface {
	GetFund(ctx context.Context, nombre, categoria string) (*storages.Fund, error)
}

// Sender канал доставки уведомления клиенту
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}

// Service превращает события подписки в уведомления и архивирует их
type Service struct {
	storage Storage
	catalog FundLookup
	sender  Sender
	logger  *logrus.Logger
	now     func() time.Time
}

// NewService создает сервис уведомлений; catalog может быть nil
func NewService(storage Storage, catalog FundLookup, sender Sender, logger *logrus.Logger) *Service {
	return &Service{
		storage: storage,
		catalog: catalog,
		sender:  sender,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// HandleBatch доставляет уведомления по событиям и сохраняет пакет.
// Ошибка доставки отражается в статусе уведомления, ошибка сохранения возвращается.
func (s *Service) HandleBatch(ctx context.Context, events []Event) error {
	notifications := make([]Notification, 0, len(events))

	for i := range events {
		n := s.build(ctx, &events[i])

		if err := s.sender.Send(ctx, n); err != nil {
			s.logger.Warnf("Failed to deliver notification for tx %s: %v", n.TransactionID, err)
			n.Status = StatusFailed
			n.ErrorMessage = err.Error()
		} else {
			n.Status = StatusSent
		}

		n.ProcessedAt = s.now()
		notifications = append(notifications, *n)
	}

	if err := s.storage.SaveBatch(ctx, notifications); err != nil {
		return fmt.Errorf("failed to archive notifications: %w", err)
	}

	return nil
}

func (s *Service) build(ctx context.Context, e *Event) *Notification {
	n := &Notification{
		TransactionID: e.TransactionID,
		User:          e.User,
		Fondo:         e.Fondo,
		Categoria:     e.Categoria,
		Monto:         e.Monto,
		SubscribedAt:  e.Timestamp,
	}

	if s.catalog != nil {
		fund, err := s.catalog.GetFund(ctx, e.Fondo, e.Categoria)
		switch {
		case err == nil:
			n.Categoria = fund.Categoria
			n.MontoMinimo = fund.MontoMinimo
		case errors.Is(err, storages.ErrNotFound):
			s.logger.Warnf("Fund %s is not in the catalog", e.Fondo)
		default:
			s.logger.Warnf("Catalog lookup for fund %s failed: %v", e.Fondo, err)
		}
	}

	if e.Correo != "" {
		n.Channel = ChannelEmail
		n.Recipient = e.Correo
	} else {
		n.Channel = ChannelSMS
		n.Recipient = e.Telefono
	}

	n.Subject = fmt.Sprintf("Suscripción al fondo %s", e.Fondo)
	n.Body = renderBody(n)

	return n
}

func renderBody(n *Notification) string {
	body := fmt.Sprintf(
		"Su suscripción al fondo %s fue registrada con un monto de $%s COP. Transacción: %s.",
		n.Fondo, n.Monto.StringFixed(2), n.TransactionID,
	)
	if n.Categoria != "" {
		body += fmt.Sprintf(" Categoría: %s.", n.Categoria)
	}
	return body
}

// LogSender доставка через журнал сервиса; внешний канал подключается реализацией Sender
type LogSender struct {
	logger *logrus.Logger
}

// NewLogSender создает LogSender
func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send записывает уведомление в лог
func (s *LogSender) Send(ctx context.Context, n *Notification) error {
	if n.Recipient == "" {
		return fmt.Errorf("no recipient for user %s", n.User)
	}

	s.logger.WithFields(logrus.Fields{
		"channel":        n.Channel,
		"recipient":      n.Recipient,
		"transaction_id": n.TransactionID,
	}).Info(n.Subject)
	return nil
}
