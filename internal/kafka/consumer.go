package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/notification"
)

// BatchHandler обрабатывает пакет событий подписки
type BatchHandler interface {
	HandleBatch(ctx context.Context, events []notification.Event) error
}

// messageReader подмножество kafka.Reader, используемое consumer
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer Kafka consumer для получения сообщений
type Consumer struct {
	reader            messageReader
	handler           BatchHandler
	logger            *logrus.Logger
	batchSize         int
	workers           int
	flushInterval     time.Duration
	maxProcessingTime time.Duration
	retryAttempts     int
	retryDelay        time.Duration

	// Статистика
	mu                sync.RWMutex
	messagesProcessed int64
	messagesFailed    int64
	startTime         time.Time
}

// ConsumerConfig конфигурация consumer
type ConsumerConfig struct {
	Brokers           []string
	Topic             string
	GroupID           string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	BatchSize         int
	Workers           int
	FlushInterval     time.Duration
	MaxProcessingTime time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// NewConsumer создает новый Kafka consumer
func NewConsumer(cfg *ConsumerConfig, handler BatchHandler, logger *logrus.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		Logger:      kafka.LoggerFunc(logger.Debugf),
		ErrorLogger: kafka.LoggerFunc(logger.Errorf),
	})

	logger.Infof("Kafka consumer initialized: Topic=%s, GroupID=%s, Brokers=%v",
		cfg.Topic, cfg.GroupID, cfg.Brokers)

	return newConsumer(reader, cfg, handler, logger)
}

// defaultFlushInterval используется, если интервал сброса не задан
const defaultFlushInterval = time.Second

func newConsumer(reader messageReader, cfg *ConsumerConfig, handler BatchHandler, logger *logrus.Logger) *Consumer {
	c := &Consumer{
		reader:            reader,
		handler:           handler,
		logger:            logger,
		batchSize:         cfg.BatchSize,
		workers:           cfg.Workers,
		flushInterval:     cfg.FlushInterval,
		maxProcessingTime: cfg.MaxProcessingTime,
		retryAttempts:     cfg.RetryAttempts,
		retryDelay:        cfg.RetryDelay,
		startTime:         time.Now(),
	}

	if c.batchSize < 1 {
		c.batchSize = 1
	}
	if c.workers < 1 {
		c.workers = 1
	}
	if c.flushInterval <= 0 {
		c.flushInterval = defaultFlushInterval
	}
	if c.retryAttempts < 1 {
		c.retryAttempts = 1
	}

	return c
}

// Start запускает consumer и блокируется до отмены ctx.
// Каждая партиция закреплена за одним воркером, поэтому смещения партиции коммитятся по порядку.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer...")

	queues := make([]chan kafka.Message, c.workers)
	for i := range queues {
		queues[i] = make(chan kafka.Message, c.batchSize*2)
	}

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.processMessages(ctx, queues[workerID], workerID)
		}(i)
	}

	go func() {
		defer func() {
			for _, queue := range queues {
				close(queue)
			}
		}()
		c.readMessages(ctx, queues)
	}()

	wg.Wait()

	c.logger.Info("Kafka consumer stopped")
	return nil
}

// workerFor возвращает номер воркера, обслуживающего партицию сообщения
func (c *Consumer) workerFor(msg kafka.Message) int {
	if msg.Partition < 0 {
		return 0
	}
	return msg.Partition % c.workers
}

// readMessages читает сообщения из Kafka и раздает их воркерам по партициям
func (c *Consumer) readMessages(ctx context.Context, queues []chan kafka.Message) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Stopping message reading...")
				return
			}
			c.logger.Errorf("Failed to fetch message: %v", err)
			if !sleepContext(ctx, c.retryDelay) {
				return
			}
			continue
		}

		select {
		case queues[c.workerFor(msg)] <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// processMessages собирает сообщения в пакеты и сохраняет их.
// Воркер останавливается, если пакет не удалось обработать до отмены контекста.
func (c *Consumer) processMessages(ctx context.Context, messages <-chan kafka.Message, workerID int) {
	batch := make([]notification.Event, 0, c.batchSize)
	kafkaMessages := make([]kafka.Message, 0, c.batchSize)

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	flush := func(ctx context.Context) bool {
		if len(kafkaMessages) == 0 {
			return true
		}
		ok := c.flushBatch(ctx, batch, kafkaMessages)
		batch = batch[:0]
		kafkaMessages = kafkaMessages[:0]
		return ok
	}

	for {
		select {
		case <-ctx.Done():
			// Остаток пакета сохраняется с отдельным таймаутом
			shutdownCtx, cancel := context.WithTimeout(context.Background(), c.maxProcessingTime)
			flush(shutdownCtx)
			cancel()
			return

		case <-ticker.C:
			if !flush(ctx) {
				return
			}

		case msg, ok := <-messages:
			if !ok {
				flush(ctx)
				return
			}

			// Смещение некорректного сообщения коммитится вместе с пакетом,
			// чтобы не обогнать еще не сохраненные события партиции
			kafkaMessages = append(kafkaMessages, msg)

			event, err := parseMessage(msg)
			if err != nil {
				c.logger.Errorf("Worker %d: Failed to parse message at offset %d: %v", workerID, msg.Offset, err)
				c.incrementFailed(1)
				continue
			}

			batch = append(batch, *event)

			if len(batch) >= c.batchSize && !flush(ctx) {
				return
			}
		}
	}
}

// parseMessage разбирает событие подписки
func parseMessage(msg kafka.Message) (*notification.Event, error) {
	var event notification.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	if event.TransactionID == "" {
		return nil, fmt.Errorf("message without transaction_id")
	}

	return &event, nil
}

// flushBatch передает пакет обработчику и коммитит смещения после успеха.
// Неудачный пакет повторяется до успеха или отмены ctx; при отмене смещения не коммитятся.
func (c *Consumer) flushBatch(ctx context.Context, batch []notification.Event, messages []kafka.Message) bool {
	start := time.Now()

	if len(batch) > 0 {
		for attempt := 1; ; attempt++ {
			err := c.handler.HandleBatch(ctx, batch)
			if err == nil {
				break
			}

			if attempt < c.retryAttempts {
				c.logger.Warnf("Attempt %d/%d: Failed to handle batch: %v", attempt, c.retryAttempts, err)
			} else {
				c.logger.Errorf("Attempt %d: Failed to handle batch, partition is blocked until it succeeds: %v", attempt, err)
			}

			if !sleepContext(ctx, c.retryDelay) {
				c.logger.Errorf("Batch of %d events abandoned without commit: %v", len(batch), err)
				c.incrementFailed(int64(len(batch)))
				return false
			}
		}
	}

	if err := c.reader.CommitMessages(ctx, messages...); err != nil {
		// Сообщения будут доставлены повторно; дубликаты отсекает уникальный индекс хранилища
		c.logger.Errorf("Failed to commit messages: %v", err)
	}

	if len(batch) == 0 {
		return true
	}

	duration := time.Since(start)
	c.incrementProcessed(int64(len(batch)))

	c.logger.Infof("Flushed batch: size=%d, duration=%v, rate=%.2f msg/s",
		len(batch), duration, float64(len(batch))/duration.Seconds())
	return true
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *Consumer) incrementProcessed(count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesProcessed += count
}

func (c *Consumer) incrementFailed(count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesFailed += count
}

// GetStatistics возвращает статистику обработки
func (c *Consumer) GetStatistics() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	duration := time.Since(c.startTime)
	rate := float64(c.messagesProcessed) / duration.Seconds()

	return map[string]interface{}{
		"messages_processed": c.messagesProcessed,
		"messages_failed":    c.messagesFailed,
		"processing_rate":    rate,
		"uptime_seconds":     duration.Seconds(),
	}
}

// Close закрывает consumer
func (c *Consumer) Close() error {
	c.logger.Info("Closing Kafka consumer")
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
