package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/garrettladley/whoopsync/internal/repository"
)

const (
	EventRecordIngested = "record.ingested"

	recordsChannelPrefix = "whoopsync:records:"
)

// RecordEvent announces a newly stored record to downstream consumers.
type RecordEvent struct {
	Type       string            `json:"type"`
	UserID     string            `json:"whoop_user_id"`
	Record     repository.Record `json:"record"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func NewRecordEvent(record *repository.Record, now time.Time) RecordEvent {
	return RecordEvent{
		Type:       EventRecordIngested,
		UserID:     record.UserID,
		Record:     *record,
		OccurredAt: now.UTC(),
	}
}

type RecordPublisher interface {
	Publish(ctx context.Context, event RecordEvent) error
	Close() error
}

var (
	_ RecordPublisher = NoopPublisher{}
	_ RecordPublisher = MultiPublisher(nil)
	_ RecordPublisher = (*RedisRecordPublisher)(nil)
	_ RecordPublisher = (*KafkaRecordPublisher)(nil)
)

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, RecordEvent) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// MultiPublisher publishes to every sink and joins their errors.
type MultiPublisher []RecordPublisher

func (m MultiPublisher) Publish(ctx context.Context, event RecordEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiPublisher) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RedisRecordPublisher fans events out over pub/sub, one channel per user.
type RedisRecordPublisher struct {
	client *redis.Client
}

func NewRedisRecordPublisher(client *redis.Client) *RedisRecordPublisher {
	return &RedisRecordPublisher{client: client}
}

func RecordsChannel(userID string) string {
	return recordsChannelPrefix + userID
}

func (p *RedisRecordPublisher) Publish(ctx context.Context, event RecordEvent) error {
	data, err := go_json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal record event: %w", err)
	}
	if err := p.client.Publish(ctx, RecordsChannel(event.UserID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish record event: %w", err)
	}
	return nil
}

// Close is a no-op; the client is owned by the caller.
func (p *RedisRecordPublisher) Close() error { return nil }

const (
	kafkaPublishTimeout = 2 * time.Second
	kafkaMaxAttempts    = 2
	kafkaBatchTimeout   = 10 * time.Millisecond
)

// KafkaRecordPublisher lazily opens a single writer for its topic. Each
// publish is bounded by kafkaPublishTimeout.
type KafkaRecordPublisher struct {
	brokers []string
	topic   string
	mu      sync.Mutex
	writer  *kafka.Writer
}

func NewKafkaRecordPublisher(brokers []string, topic string) *KafkaRecordPublisher {
	return &KafkaRecordPublisher{
		brokers: brokers,
		topic:   topic,
	}
}

func (p *KafkaRecordPublisher) Publish(ctx context.Context, event RecordEvent) error {
	msg, err := RecordMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, kafkaPublishTimeout)
	defer cancel()

	if err := p.getWriter().WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write record event to %s: %w", p.topic, err)
	}
	return nil
}

// RecordMessage keys the message by user so a user's events stay ordered
// within one partition.
func RecordMessage(event RecordEvent) (kafka.Message, error) {
	data, err := go_json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal record event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}

func (p *KafkaRecordPublisher) getWriter() *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(p.brokers...),
			Topic:        p.topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			MaxAttempts:  kafkaMaxAttempts,
			BatchTimeout: kafkaBatchTimeout,
			WriteTimeout: kafkaPublishTimeout,
		}
	}
	return p.writer
}

func (p *KafkaRecordPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}
