package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// TopicConfig параметры создаваемого топика
type TopicConfig struct {
	Brokers           []string
	Topic             string
	Partitions        int
	ReplicationFactor int
}

// EnsureTopic создает топик через контроллер кластера, если он еще не существует
func EnsureTopic(ctx context.Context, cfg *TopicConfig, logger *logrus.Logger) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial kafka broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get kafka controller: %w", err)
	}

	controllerAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	controllerConn, err := kafka.DialContext(ctx, "tcp", controllerAddr)
	if err != nil {
		return fmt.Errorf("failed to dial kafka controller: %w", err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.Topic,
		NumPartitions:     cfg.Partitions,
		ReplicationFactor: cfg.ReplicationFactor,
	})
	if errors.Is(err, kafka.TopicAlreadyExists) {
		logger.Infof("Kafka topic %s already exists", cfg.Topic)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", cfg.Topic, err)
	}

	logger.Infof("Kafka topic %s created: partitions=%d, replication=%d",
		cfg.Topic, cfg.Partitions, cfg.ReplicationFactor)
	return nil
}
