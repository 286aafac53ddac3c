package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"parcel-delivery/internal/logx"
)

const (
	defaultRedeliverEvery = 5 * time.Second
	defaultDeferredCap    = 1024
	flushTimeout          = 5 * time.Second
)

// Metrics collects job counters. Nil fields are skipped.
type Metrics struct {
	Processed *prometheus.CounterVec   // labels: queue, outcome
	Duration  *prometheus.HistogramVec // labels: queue
	Deferred  prometheus.Counter
}

// Manager owns the handler registry, publishes jobs and runs consumers.
type Manager struct {
	broker   Broker
	logger   logx.Logger
	handlers map[string]Handler
	keys     []string

	metrics        *Metrics
	concurrency    int
	redeliverEvery time.Duration
	deferredCap    int

	mu       sync.Mutex
	deferred []Job

	now   func() time.Time
	newID func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics records job outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(mg *Manager) { mg.metrics = m }
}

// WithConcurrency runs n consumers per queue.
func WithConcurrency(n int) Option {
	return func(mg *Manager) {
		if n > 0 {
			mg.concurrency = n
		}
	}
}

// WithRedeliveryInterval sets how often deferred jobs are republished.
func WithRedeliveryInterval(d time.Duration) Option {
	return func(mg *Manager) {
		if d > 0 {
			mg.redeliverEvery = d
		}
	}
}

// WithDeferredCapacity bounds the number of jobs kept while the broker is down.
func WithDeferredCapacity(n int) Option {
	return func(mg *Manager) {
		if n > 0 {
			mg.deferredCap = n
		}
	}
}

// NewManager registers handlers by key. Keys must be unique.
func NewManager(b Broker, logger logx.Logger, handlers []Handler, opts ...Option) (*Manager, error) {
	if logger == nil {
		logger = logx.Nop()
	}
	m := &Manager{
		broker:         b,
		logger:         logger,
		handlers:       make(map[string]Handler, len(handlers)),
		concurrency:    1,
		redeliverEvery: defaultRedeliverEvery,
		deferredCap:    defaultDeferredCap,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, h := range handlers {
		key := h.Key()
		if _, dup := m.handlers[key]; dup {
			return nil, fmt.Errorf("duplicate handler for queue %q", key)
		}
		m.handlers[key] = h
		m.keys = append(m.keys, key)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Queues returns registered keys in registration order.
func (m *Manager) Queues() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Enqueue serializes payload into a new job on queue key and returns its id.
// When the broker is unreachable the job is kept in memory and republished later.
func (m *Manager) Enqueue(ctx context.Context, key string, payload any) (string, error) {
	if _, ok := m.handlers[key]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownQueue, key)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", key, err)
	}

	job := Job{
		ID:         m.newID(),
		Queue:      key,
		Data:       data,
		EnqueuedAt: m.now().UTC(),
	}

	err = m.broker.Publish(ctx, job)
	if err == nil {
		return job.ID, nil
	}
	if !isTransient(err) {
		return "", fmt.Errorf("publish %s: %w", key, err)
	}
	if !m.deferJob(job) {
		return "", fmt.Errorf("publish %s: %w: %w", key, ErrDeferredFull, err)
	}

	m.logger.Warn("job deferred",
		logx.String("queue", key),
		logx.String("job_id", job.ID),
		logx.Err(err),
	)
	if m.metrics != nil && m.metrics.Deferred != nil {
		m.metrics.Deferred.Inc()
	}
	return job.ID, nil
}

func (m *Manager) deferJob(job Job) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.deferred) >= m.deferredCap {
		return false
	}
	m.deferred = append(m.deferred, job)
	return true
}

// Deferred returns the number of jobs waiting for the broker.
func (m *Manager) Deferred() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deferred)
}

// flushDeferred republishes deferred jobs in order, stopping at the first failure.
func (m *Manager) flushDeferred(ctx context.Context) int {
	m.mu.Lock()
	pending := m.deferred
	m.deferred = nil
	m.mu.Unlock()

	sent := 0
	for i, job := range pending {
		if err := m.broker.Publish(ctx, job); err != nil {
			m.mu.Lock()
			m.deferred = append(append([]Job(nil), pending[i:]...), m.deferred...)
			m.mu.Unlock()
			m.logger.Debug("deferred publish failed",
				logx.String("queue", job.Queue),
				logx.String("job_id", job.ID),
				logx.Err(err),
			)
			break
		}
		sent++
	}
	if sent > 0 {
		m.logger.Info("deferred jobs published", logx.Int("count", sent))
	}
	return sent
}

func (m *Manager) redeliver(ctx context.Context) {
	t := time.NewTicker(m.redeliverEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			fctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			m.flushDeferred(fctx)
			cancel()
			if n := m.Deferred(); n > 0 {
				m.logger.Warn("deferred jobs dropped on shutdown", logx.Int("count", n))
			}
			return
		case <-t.C:
			m.flushDeferred(ctx)
		}
	}
}

// RunPublisher only republishes deferred jobs. API processes use it.
func (m *Manager) RunPublisher(ctx context.Context) error {
	m.redeliver(ctx)
	return ctx.Err()
}

// Run starts consumers for every registered queue and blocks until ctx is done
// or a consumer fails.
func (m *Manager) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, key := range m.keys {
		key := key
		h := m.handlers[key]
		for i := 0; i < m.concurrency; i++ {
			g.Go(func() error {
				if err := m.broker.Consume(gctx, key, m.process(h)); err != nil {
					return fmt.Errorf("consume %s: %w", key, err)
				}
				return nil
			})
		}
	}
	g.Go(func() error {
		m.redeliver(gctx)
		return nil
	})

	m.logger.Info("queue manager started",
		logx.Any("queues", m.keys),
		logx.Int("concurrency", m.concurrency),
	)
	err := g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (m *Manager) process(h Handler) HandleFunc {
	return func(ctx context.Context, job Job) (err error) {
		start := m.now()
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panic: %v", r)
			}
			m.report(job, m.now().Sub(start), err)
		}()
		return h.Handle(ctx, job)
	}
}

func (m *Manager) report(job Job, took time.Duration, err error) {
	fields := []logx.Field{
		logx.String("queue", job.Queue),
		logx.String("job_id", job.ID),
		logx.Int("attempt", job.Attempt),
		logx.Duration("duration", took),
	}
	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		m.logger.Error("job failed", append(fields, logx.Err(err))...)
	} else {
		m.logger.Info("job succeeded", fields...)
	}

	if m.metrics == nil {
		return
	}
	if m.metrics.Processed != nil {
		m.metrics.Processed.WithLabelValues(job.Queue, outcome).Inc()
	}
	if m.metrics.Duration != nil {
		m.metrics.Duration.WithLabelValues(job.Queue).Observe(took.Seconds())
	}
}
