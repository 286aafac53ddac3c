package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryBroker keeps jobs in process memory. It is meant for local runs and tests.
type MemoryBroker struct {
	policy RetryPolicy
	buffer int

	mu     sync.Mutex
	queues map[string]chan Job
	failed map[string][]Job
	closed bool
	done   chan struct{}

	afterFunc func(d time.Duration, f func())
}

// NewMemoryBroker creates a broker with per-queue channels of the given buffer size.
func NewMemoryBroker(policy RetryPolicy, buffer int) *MemoryBroker {
	if buffer <= 0 {
		buffer = 128
	}
	return &MemoryBroker{
		policy: policy,
		buffer: buffer,
		queues: make(map[string]chan Job),
		failed: make(map[string][]Job),
		done:   make(chan struct{}),
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

func (b *MemoryBroker) ch(queue string) chan Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.queues[queue]
	if !ok {
		c = make(chan Job, b.buffer)
		b.queues[queue] = c
	}
	return c
}

func (b *MemoryBroker) Publish(ctx context.Context, job Job) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBrokerUnavailable
	}

	select {
	case b.ch(job.Queue) <- job:
		return nil
	case <-b.done:
		return ErrBrokerUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MemoryBroker) Consume(ctx context.Context, queue string, h HandleFunc) error {
	c := b.ch(queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.done:
			return nil
		case job := <-c:
			job.Attempt++
			if err := h(ctx, job); err != nil {
				b.fail(job, err)
			}
		}
	}
}

func (b *MemoryBroker) fail(job Job, err error) {
	job.LastError = err.Error()
	if !b.policy.ShouldRetry(job.Attempt, err) {
		b.mu.Lock()
		b.failed[job.Queue] = append(b.failed[job.Queue], job)
		b.mu.Unlock()
		return
	}
	b.afterFunc(b.policy.Delay(job.Attempt), func() {
		select {
		case b.ch(job.Queue) <- job:
		case <-b.done:
		}
	})
}

// Failed returns jobs of queue that exhausted their attempts.
func (b *MemoryBroker) Failed(queue string) []Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Job, len(b.failed[queue]))
	copy(out, b.failed[queue])
	return out
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.done)
	}
	return nil
}
