package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/radieske/sports-odds-gateway/internal/shared/kafka"
	"github.com/radieske/sports-odds-gateway/pkg/contracts/events"
)

// KafkaPublisher encapsula o writer Kafka e o logger.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewKafkaPublisher cria um publisher para o tópico de snapshots.
// Em ambientes local/dev o tópico é criado via controller do cluster.
func NewKafkaPublisher(brokers []string, topic string, env string, log *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not provided")
	}

	if env == "local" || env == "dev" {
		ensureTopic(brokers[0], topic, log)
	}

	// chave = esporte, então o balanceamento por hash mantém a ordem por esporte
	writer := sharedkafka.NewWriter(strings.Join(brokers, ","), topic)
	writer.RequiredAcks = kafka.RequireAll
	writer.ReadTimeout = 10 * time.Second

	return &KafkaPublisher{writer: writer, log: log}, nil
}

func ensureTopic(broker, topic string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		log.Warn("failed to connect to kafka", zap.Error(err))
		return
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		log.Warn("failed to get kafka controller", zap.Error(err))
		return
	}

	cconn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		log.Warn("failed to dial controller", zap.Error(err))
		return
	}
	defer cconn.Close()

	cfg := kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}
	if err := cconn.CreateTopics(cfg); err != nil && !strings.Contains(err.Error(), "already exists") {
		log.Warn("failed to create kafka topic", zap.String("topic", topic), zap.Error(err))
	} else if err == nil {
		log.Info("kafka topic created", zap.String("topic", topic))
	}
}

// Publish serializa o evento e envia com a chave do esporte
func (p *KafkaPublisher) Publish(ctx context.Context, e events.SnapshotRefreshed) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}

	if err := sharedkafka.WriteJSON(ctx, p.writer, e.SportKey, value); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}

	p.log.Debug("published snapshot event",
		zap.String("sport", e.SportKey),
		zap.String("refresh_id", e.RefreshID),
		zap.Int("games", e.GameCount),
	)
	return nil
}

func (p *KafkaPublisher) Name() string { return "kafka" }

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
