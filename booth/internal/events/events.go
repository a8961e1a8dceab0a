// Package events announces batch lifecycle changes to a message broker.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/pkg/circuit_breaker"
	"github.com/Astemirdum/booth-service/pkg/kafka"
	"github.com/Astemirdum/booth-service/pkg/rabbitmq"
)

type Kind string

const (
	BatchCommitted Kind = "batch.committed"
	BatchEdited    Kind = "batch.edited"
	BatchDeleted   Kind = "batch.deleted"
)

type Event struct {
	Kind    Kind          `json:"kind"`
	BatchID string        `json:"batchId"`
	LogID   string        `json:"logId,omitempty"`
	Type    model.LogType `json:"type,omitempty"`
	Summary model.Summary `json:"summary"`
	Deleted int           `json:"deleted,omitempty"`
	At      time.Time     `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

const (
	BrokerNone     = "none"
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
)

type Config struct {
	Broker   string `envconfig:"EVENTS_BROKER" default:"none"`
	Kafka    kafka.Config
	RabbitMQ rabbitmq.Config
}

// New builds the configured publisher wrapped in a circuit breaker.
func New(cfg Config, log *zap.Logger) (Publisher, error) {
	var (
		p   Publisher
		err error
	)
	switch cfg.Broker {
	case BrokerNone, "":
		return Noop{}, nil
	case BrokerKafka:
		p, err = NewKafka(cfg.Kafka)
	case BrokerRabbitMQ:
		p, err = NewRabbit(cfg.RabbitMQ)
	default:
		return nil, errors.Errorf("unknown events broker %q", cfg.Broker)
	}
	if err != nil {
		return nil, err
	}
	return NewGuarded(p, circuit_breaker.New(20, 10*time.Second, 0.5, 3), log), nil
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafka(cfg kafka.Config) (*Kafka, error) {
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "kafka.NewProducer")
	}
	return NewKafkaWithProducer(producer, cfg.Topic), nil
}

func NewKafkaWithProducer(producer sarama.SyncProducer, topic string) *Kafka {
	if topic == "" {
		topic = kafka.BatchTopic
	}
	return &Kafka{producer: producer, topic: topic}
}

func (k *Kafka) Publish(_ context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(e.BatchID),
		Value: sarama.ByteEncoder(b),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(e.Kind)},
		},
	})
	return err
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

type Rabbit struct {
	pub *rabbitmq.Publisher
}

func NewRabbit(cfg rabbitmq.Config) (*Rabbit, error) {
	pub, err := rabbitmq.NewPublisher(cfg)
	if err != nil {
		return nil, err
	}
	return &Rabbit{pub: pub}, nil
}

func (r *Rabbit) Publish(ctx context.Context, e Event) error {
	return r.pub.PublishJSON(ctx, string(e.Kind), e)
}

func (r *Rabbit) Close() error {
	return r.pub.Close()
}

// Guarded stops calling a failing broker until the breaker lets a probe through.
type Guarded struct {
	next Publisher
	cb   circuit_breaker.CircuitBreaker
	log  *zap.Logger
}

func NewGuarded(next Publisher, cb circuit_breaker.CircuitBreaker, log *zap.Logger) *Guarded {
	return &Guarded{next: next, cb: cb, log: log.Named("events")}
}

func (g *Guarded) Publish(ctx context.Context, e Event) error {
	err := g.cb.Call(func() error {
		return g.next.Publish(ctx, e)
	})
	if err != nil {
		g.log.Warn("publish",
			zap.String("kind", string(e.Kind)),
			zap.String("batchId", e.BatchID),
			zap.Stringer("breaker", g.cb.State()),
			zap.Error(err))
	}
	return err
}

func (g *Guarded) Close() error {
	return g.next.Close()
}
