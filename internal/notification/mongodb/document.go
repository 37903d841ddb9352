package mongodb

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gw-fund-subscriptions/internal/notification"
)

// document представление уведомления в коллекции; суммы хранятся как Decimal128
type document struct {
	ID            primitive.ObjectID    `bson:"_id,omitempty"`
	TransactionID string                `bson:"transaction_id"`
	User          string                `bson:"user"`
	Channel       string                `bson:"channel"`
	Recipient     string                `bson:"recipient"`
	Subject       string                `bson:"subject"`
	Body          string                `bson:"body"`
	Fondo         string                `bson:"fondo"`
	Categoria     string                `bson:"categoria,omitempty"`
	MontoMinimo   *primitive.Decimal128 `bson:"monto_minimo,omitempty"`
	Monto         primitive.Decimal128  `bson:"monto"`
	SubscribedAt  time.Time             `bson:"subscribed_at"`
	ProcessedAt   time.Time             `bson:"processed_at"`
	Status        string                `bson:"status"`
	ErrorMessage  string                `bson:"error_message,omitempty"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func toDocument(n *notification.Notification) (*document, error) {
	monto, err := toDecimal128(n.Monto)
	if err != nil {
		return nil, fmt.Errorf("tx %s: invalid monto %s: %w", n.TransactionID, n.Monto, err)
	}

	doc := &document{
		TransactionID: n.TransactionID,
		User:          n.User,
		Channel:       n.Channel,
		Recipient:     n.Recipient,
		Subject:       n.Subject,
		Body:          n.Body,
		Fondo:         n.Fondo,
		Categoria:     n.Categoria,
		Monto:         monto,
		SubscribedAt:  n.SubscribedAt,
		ProcessedAt:   n.ProcessedAt,
		Status:        n.Status,
		ErrorMessage:  n.ErrorMessage,
	}

	if n.ID != "" {
		id, err := primitive.ObjectIDFromHex(n.ID)
		if err != nil {
			return nil, fmt.Errorf("tx %s: invalid id: %w", n.TransactionID, err)
		}
		doc.ID = id
	}

	if !n.MontoMinimo.IsZero() {
		minimo, err := toDecimal128(n.MontoMinimo)
		if err != nil {
			return nil, fmt.Errorf("tx %s: invalid monto_minimo %s: %w", n.TransactionID, n.MontoMinimo, err)
		}
		doc.MontoMinimo = &minimo
	}

	return doc, nil
}

func (d *document) toNotification() (notification.Notification, error) {
	monto, err := fromDecimal128(d.Monto)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("tx %s: invalid monto: %w", d.TransactionID, err)
	}

	n := notification.Notification{
		TransactionID: d.TransactionID,
		User:          d.User,
		Channel:       d.Channel,
		Recipient:     d.Recipient,
		Subject:       d.Subject,
		Body:          d.Body,
		Fondo:         d.Fondo,
		Categoria:     d.Categoria,
		Monto:         monto,
		SubscribedAt:  d.SubscribedAt,
		ProcessedAt:   d.ProcessedAt,
		Status:        d.Status,
		ErrorMessage:  d.ErrorMessage,
	}

	if !d.ID.IsZero() {
		n.ID = d.ID.Hex()
	}

	if d.MontoMinimo != nil {
		minimo, err := fromDecimal128(*d.MontoMinimo)
		if err != nil {
			return notification.Notification{}, fmt.Errorf("tx %s: invalid monto_minimo: %w", d.TransactionID, err)
		}
		n.MontoMinimo = minimo
	}

	return n, nil
}
