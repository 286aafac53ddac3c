package redisq

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"parcel-delivery/internal/logx"
)

// StallChecker periodically requeues jobs whose worker died mid-processing.
type StallChecker struct {
	broker  *Broker
	queues  []string
	timeout time.Duration
	logger  logx.Logger
	cron    *cron.Cron
	spec    string
}

// NewStallChecker runs every interval and requeues jobs active longer than timeout.
func NewStallChecker(b *Broker, queues []string, interval, timeout time.Duration, logger logx.Logger) *StallChecker {
	if logger == nil {
		logger = logx.Nop()
	}
	return &StallChecker{
		broker:  b,
		queues:  queues,
		timeout: timeout,
		logger:  logger,
		cron:    cron.New(),
		spec:    fmt.Sprintf("@every %s", interval),
	}
}

// Run schedules the check and blocks until ctx is done.
func (c *StallChecker) Run(ctx context.Context) error {
	if _, err := c.cron.AddFunc(c.spec, func() { c.Check(ctx) }); err != nil {
		return fmt.Errorf("schedule stall check: %w", err)
	}
	c.cron.Start()
	c.logger.Info("stall checker started", logx.String("schedule", c.spec))

	<-ctx.Done()
	<-c.cron.Stop().Done()
	return ctx.Err()
}

// Check requeues stalled jobs of every queue once.
func (c *StallChecker) Check(ctx context.Context) int {
	total := 0
	for _, q := range c.queues {
		n, err := c.broker.RequeueStalled(ctx, q, c.timeout)
		if err != nil {
			c.logger.Error("stall check failed", logx.String("queue", q), logx.Err(err))
			continue
		}
		if n > 0 {
			c.logger.Warn("stalled jobs requeued", logx.String("queue", q), logx.Int("count", n))
		}
		total += n
	}
	return total
}
