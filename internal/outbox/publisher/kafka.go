package publisher

import (
	"context"
	"crypto/tls"
	"log/slog"
	"os"
	"time"

	"github.com/Shopify/sarama"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

// KafkaPublisher produces messages to a single topic with a synchronous producer. The
// aggregate ID is the message key, so events of one aggregate land on one partition in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewSaramaConfig builds the producer configuration. Successes must be returned for
// SyncProducer to work.
func NewSaramaConfig(tlsEnabled, tlsSkipVerify bool) *sarama.Config {
	cfg := sarama.NewConfig()

	host, _ := os.Hostname()

	cfg.ClientID = host
	cfg.Version = sarama.V2_4_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Compression = sarama.CompressionGZIP
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Metadata.Retry.Max = 10
	cfg.Metadata.Retry.Backoff = 2 * time.Second

	if tlsEnabled {
		cfg.Net.TLS.Enable = true
		// #nosec G402 -- controlled by KAFKA_TLS_SKIP_VERIFY
		cfg.Net.TLS.Config = &tls.Config{InsecureSkipVerify: tlsSkipVerify}
	}

	return cfg
}

// NewKafkaPublisher connects a SyncProducer to the given brokers.
func NewKafkaPublisher(
	brokers []string,
	topic string,
	cfg *sarama.Config,
	logger *slog.Logger,
) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, apperrors.Wrap(err, "could not start kafka producer")
	}
	return NewKafkaPublisherWithProducer(producer, topic, logger), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish sends the message and waits for the broker acknowledgement. SyncProducer has no
// context support, so ctx only short-circuits an already cancelled call.
func (p *KafkaPublisher) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	headers := make([]sarama.RecordHeader, 0, 4)
	for k, v := range msg.headers() {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(msg.AggregateID),
		Value:   sarama.ByteEncoder(msg.Payload),
		Headers: headers,
	})
	if err != nil {
		return apperrors.Wrap(err, "error producing message in kafka")
	}

	p.logger.Debug("produced message in kafka",
		slog.String("topic", p.topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("event_id", msg.ID),
	)
	return nil
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
