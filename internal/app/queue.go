package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"parcel-delivery/internal/config"
	"parcel-delivery/internal/logx"
	"parcel-delivery/internal/mailer"
	"parcel-delivery/internal/notification"
	"parcel-delivery/internal/queue"
	"parcel-delivery/internal/transport/kafka"
	"parcel-delivery/internal/transport/redisq"
)

const memoryBrokerBuffer = 256

func newRetryPolicy(cfg *config.Config) queue.RetryPolicy {
	return queue.RetryPolicy{
		MaxAttempts: cfg.Queue.MaxAttempts,
		Backoff:     cfg.Queue.Backoff,
		MaxBackoff:  cfg.Queue.MaxBackoff,
	}
}

func newRedisClient(cfg *config.Config) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Redis.Addr},
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// newBroker selects the queue backend from QUEUE_DRIVER.
func newBroker(cfg *config.Config, policy queue.RetryPolicy, logger logx.Logger) (queue.Broker, error) {
	switch cfg.Queue.Driver {
	case config.DriverRedis:
		return redisq.NewBroker(newRedisClient(cfg), cfg.Queue.Prefix, policy, logger), nil
	case config.DriverKafka:
		prefix := cfg.Kafka.TopicPrefix
		if prefix == "" {
			prefix = cfg.Queue.Prefix
		}
		return kafka.NewBroker(kafka.Config{
			Brokers:     cfg.Kafka.Brokers,
			GroupID:     cfg.Kafka.GroupID,
			TopicPrefix: prefix,
		}, policy, logger)
	case config.DriverMemory:
		return queue.NewMemoryBroker(policy, memoryBrokerBuffer), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Queue.Driver)
	}
}

// newSender sends over SMTP when MAIL_HOST is set and logs mails otherwise.
func newSender(cfg *config.Config, r *mailer.Renderer, logger logx.Logger) (mailer.Sender, error) {
	if cfg.Mail.Host == "" {
		logger.Warn("MAIL_HOST not set, mails will only be logged")
		return mailer.NewLogSender(r, logger), nil
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host: cfg.Mail.Host,
		Port: cfg.Mail.Port,
		User: cfg.Mail.User,
		Pass: cfg.Mail.Pass,
		From: cfg.Mail.From,
	}, r)
}

func newManager(cfg *config.Config, b queue.Broker, sender mailer.Sender, m *appMetrics, logger logx.Logger) (*queue.Manager, error) {
	return queue.NewManager(b, logger, notification.Handlers(sender),
		queue.WithMetrics(m.queue),
		queue.WithConcurrency(cfg.Queue.Concurrency),
	)
}

// newStallChecker returns nil unless the broker is redis.
func newStallChecker(cfg *config.Config, b queue.Broker, mgr *queue.Manager, logger logx.Logger) *redisq.StallChecker {
	rb, ok := b.(*redisq.Broker)
	if !ok {
		return nil
	}
	return redisq.NewStallChecker(rb, mgr.Queues(), cfg.Queue.StallInterval, cfg.Queue.StallTimeout, logger)
}

func registerQueue(container *dig.Container) error {
	return provideAll(container,
		newBroker,
		mailer.NewRenderer,
		newSender,
		newManager,
		newStallChecker,
	)
}
