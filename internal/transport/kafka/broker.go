// Package kafka is a queue.Broker on top of Kafka topics.
//
// Every queue maps to the topic "<prefix>.<queue>". A failed attempt is
// republished at once to "<prefix>.<queue>.retry" with a not-before header,
// and the consumer of that topic holds it until it is due. Jobs that exhaust
// their attempts are moved to "<prefix>.<queue>.failed".
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"parcel-delivery/internal/logx"
	"parcel-delivery/internal/queue"
)

var (
	newConsumerGroup = sarama.NewConsumerGroup
	newSyncProducer  = sarama.NewSyncProducer
)

const (
	consumeErrorPause = time.Second
	notBeforeHeader   = "not-before"
)

// Config holds the Kafka connection settings.
type Config struct {
	Brokers     []string
	GroupID     string
	TopicPrefix string
}

// Broker implements queue.Broker with Kafka.
type Broker struct {
	cfg    Config
	sarama *sarama.Config
	policy queue.RetryPolicy
	logger logx.Logger
	now    func() time.Time

	dial     func() (sarama.SyncProducer, error)
	newGroup func(queue string) (sarama.ConsumerGroup, error)

	mu       sync.Mutex
	producer sarama.SyncProducer
	groups   []sarama.ConsumerGroup
	closed   bool
}

// NewBroker validates cfg. Connections are opened lazily, so an unreachable
// cluster surfaces as queue.ErrBrokerUnavailable on Publish.
func NewBroker(cfg Config, policy queue.RetryPolicy, logger logx.Logger) (*Broker, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if strings.TrimSpace(cfg.GroupID) == "" {
		return nil, fmt.Errorf("kafka: empty group id")
	}
	if logger == nil {
		logger = logx.Nop()
	}

	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest

	b := &Broker{cfg: cfg, sarama: sc, policy: policy, logger: logger, now: time.Now}
	b.dial = func() (sarama.SyncProducer, error) {
		return newSyncProducer(cfg.Brokers, sc)
	}
	b.newGroup = func(q string) (sarama.ConsumerGroup, error) {
		return newConsumerGroup(cfg.Brokers, cfg.GroupID+"."+q, sc)
	}
	return b, nil
}

func (b *Broker) topic(q string) string {
	if b.cfg.TopicPrefix == "" {
		return q
	}
	return b.cfg.TopicPrefix + "." + q
}

func (b *Broker) retryTopic(q string) string {
	return b.topic(q) + ".retry"
}

func (b *Broker) deadTopic(q string) string {
	return b.topic(q) + ".failed"
}

func (b *Broker) getProducer() (sarama.SyncProducer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, queue.ErrBrokerUnavailable
	}
	if b.producer != nil {
		return b.producer, nil
	}
	p, err := b.dial()
	if err != nil {
		return nil, classify(fmt.Errorf("kafka producer: %w", err))
	}
	b.producer = p
	return p, nil
}

func (b *Broker) Publish(ctx context.Context, job queue.Job) error {
	return b.send(ctx, b.topic(job.Queue), job)
}

func (b *Broker) send(ctx context.Context, topic string, job queue.Job, headers ...sarama.RecordHeader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	p, err := b.getProducer()
	if err != nil {
		return err
	}
	_, _, err = p.SendMessage(&sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(job.ID),
		Value:   sarama.ByteEncoder(value),
		Headers: headers,
	})
	if err != nil {
		return classify(fmt.Errorf("kafka send %s: %w", topic, err))
	}
	return nil
}

// Consume joins the consumer group of q on its main and retry topics and
// blocks until ctx is done.
func (b *Broker) Consume(ctx context.Context, q string, h queue.HandleFunc) error {
	group, err := b.newGroup(q)
	if err != nil {
		return classify(fmt.Errorf("kafka consumer group %s: %w", q, err))
	}
	b.mu.Lock()
	b.groups = append(b.groups, group)
	b.mu.Unlock()

	gh := &groupHandler{b: b, queue: q, handle: h}
	topics := []string{b.topic(q), b.retryTopic(q)}
	b.logger.Info("kafka consumer started", logx.String("topic", topics[0]), logx.String("retry_topic", topics[1]))

	for {
		if err := group.Consume(ctx, topics, gh); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.logger.Error("kafka consume error", logx.String("topic", topics[0]), logx.Err(err))
			if !queue.SleepWithContext(ctx, consumeErrorPause) {
				return nil
			}
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var firstErr error
	for _, g := range b.groups {
		if err := g.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if b.producer != nil {
		if err := b.producer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
