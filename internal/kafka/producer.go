package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/metrics"
	"gw-fund-subscriptions/internal/notification"
)

// headerTransactionID заголовок сообщения с идентификатором транзакции
const headerTransactionID = "transaction_id"

// messageWriter подмножество kafka.Writer, используемое producer
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerConfig конфигурация producer
type ProducerConfig struct {
	Brokers []string
	Topic   string
	Async   bool
}

// Producer Kafka producer для событий подписки
type Producer struct {
	writer  messageWriter
	topic   string
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewProducer создает новый Kafka producer.
// В асинхронном режиме ошибки доставки приходят в completion и учитываются в метриках.
func NewProducer(cfg *ProducerConfig, m *metrics.Metrics, logger *logrus.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        cfg.Async,
		Compression:  kafka.Snappy,
		BatchTimeout: 10 * time.Millisecond,
		ErrorLogger:  kafka.LoggerFunc(logger.Errorf),
	}

	p := &Producer{
		writer:  writer,
		topic:   cfg.Topic,
		metrics: m,
		logger:  logger,
	}

	if cfg.Async {
		writer.Completion = p.completion
	}

	logger.Infof("Kafka producer initialized for topic: %s (async=%t)", cfg.Topic, cfg.Async)

	return p
}

// completion вызывается kafka.Writer после асинхронной доставки пакета
func (p *Producer) completion(messages []kafka.Message, err error) {
	if err == nil {
		return
	}

	for _, msg := range messages {
		p.logger.WithFields(logrus.Fields{
			"tx":   transactionID(msg),
			"user": string(msg.Key),
		}).Errorf("Failed to deliver subscription event: %v", err)
		p.metrics.Notification(metrics.StatusDeliveryFailed)
	}
}

func transactionID(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == headerTransactionID {
			return string(h.Value)
		}
	}
	return ""
}

// Publish отправляет событие подписки; ключ сообщения - cedula пользователя,
// поэтому события одного пользователя попадают в одну партицию
func (p *Producer) Publish(ctx context.Context, event *notification.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.User),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: headerTransactionID, Value: []byte(event.TransactionID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.Infof("Sent subscription event to Kafka: tx=%s, user=%s, fund=%s",
		event.TransactionID, event.User, event.Fondo)

	return nil
}

// Close закрывает Kafka producer
func (p *Producer) Close() error {
	if p.writer != nil {
		p.logger.Info("Closing Kafka producer")
		return p.writer.Close()
	}
	return nil
}
