// Package redisq is a queue.Broker on top of Redis lists and sorted sets.
//
// For each queue the keys are laid out under "<prefix>:<queue>:":
//
//	jobs     hash   id -> JSON job
//	waiting  list   ids ready to run, consumed from the right
//	active   list   ids being processed
//	started  zset   id -> processing start (unix ms), for stall detection
//	delayed  zset   id -> next attempt time (unix ms)
//	failed   list   ids that exhausted their attempts
//	notify   list   wake-up token for blocked consumers, at most one entry
//
// An id is in active exactly when it has a started score. Taking a job and
// requeueing a stalled one run as Lua scripts to keep that pairing atomic.
package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"parcel-delivery/internal/logx"
	"parcel-delivery/internal/queue"
)

const (
	defaultPollTimeout = time.Second
	finishTimeout      = 5 * time.Second
	errorPause         = time.Second
	idlePause          = 50 * time.Millisecond
)

// takeScript moves the oldest waiting id to active and stamps its start.
// KEYS: waiting, active, started. ARGV: now (unix ms).
var takeScript = redis.NewScript(`
local id = redis.call('RPOPLPUSH', KEYS[1], KEYS[2])
if id then
	redis.call('ZADD', KEYS[3], ARGV[1], id)
end
return id
`)

// requeueScript returns stalled ids, and active ids with no start, to the
// front of waiting.
// KEYS: active, started, waiting. ARGV: cutoff (unix ms).
var requeueScript = redis.NewScript(`
local moved = 0
for _, id in ipairs(redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])) do
	redis.call('ZREM', KEYS[2], id)
	redis.call('LREM', KEYS[1], 1, id)
	redis.call('RPUSH', KEYS[3], id)
	moved = moved + 1
end
for _, id in ipairs(redis.call('LRANGE', KEYS[1], 0, -1)) do
	if not redis.call('ZSCORE', KEYS[2], id) then
		redis.call('LREM', KEYS[1], 1, id)
		redis.call('RPUSH', KEYS[3], id)
		moved = moved + 1
	end
end
return moved
`)

// Broker implements queue.Broker with Redis.
type Broker struct {
	client      redis.UniversalClient
	prefix      string
	policy      queue.RetryPolicy
	logger      logx.Logger
	pollTimeout time.Duration
	now         func() time.Time
}

// Option configures a Broker.
type Option func(*Broker)

// WithClock overrides the time source used for scores.
func WithClock(now func() time.Time) Option {
	return func(b *Broker) { b.now = now }
}

// WithPollTimeout sets how long a consumer blocks waiting for a job.
func WithPollTimeout(d time.Duration) Option {
	return func(b *Broker) { b.pollTimeout = d }
}

// NewBroker wraps client. The broker owns the client and closes it on Close.
func NewBroker(client redis.UniversalClient, prefix string, policy queue.RetryPolicy, logger logx.Logger, opts ...Option) *Broker {
	if logger == nil {
		logger = logx.Nop()
	}
	b := &Broker{
		client:      client,
		prefix:      prefix,
		policy:      policy,
		logger:      logger,
		pollTimeout: defaultPollTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Broker) key(q, suffix string) string {
	return b.prefix + ":" + q + ":" + suffix
}

func (b *Broker) ms(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func (b *Broker) Publish(ctx context.Context, job queue.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	_, err = b.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, b.key(job.Queue, "jobs"), job.ID, data)
		p.LPush(ctx, b.key(job.Queue, "waiting"), job.ID)
		p.LPush(ctx, b.key(job.Queue, "notify"), "1")
		p.LTrim(ctx, b.key(job.Queue, "notify"), 0, 0)
		return nil
	})
	if err != nil {
		return classify(fmt.Errorf("redis publish %s: %w", job.Queue, err))
	}
	return nil
}

// classify marks connection failures as broker unavailability.
func classify(err error) error {
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("%w: %w", queue.ErrBrokerUnavailable, err)
	}
	return err
}

func (b *Broker) Consume(ctx context.Context, q string, h queue.HandleFunc) error {
	b.logger.Info("redis consumer started", logx.String("queue", q))
	for {
		if ctx.Err() != nil {
			return nil
		}
		took, err := b.poll(ctx, q, h, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.logger.Error("redis consume error", logx.String("queue", q), logx.Err(err))
			if !queue.SleepWithContext(ctx, errorPause) {
				return nil
			}
			continue
		}
		if !took && b.pollTimeout <= 0 {
			queue.SleepWithContext(ctx, idlePause)
		}
	}
}

// poll promotes due delayed jobs, then takes at most one job and runs it.
// With a positive wait an idle queue blocks on the notify token before a
// second attempt.
func (b *Broker) poll(ctx context.Context, q string, h queue.HandleFunc, wait time.Duration) (bool, error) {
	if _, err := b.promoteDelayed(ctx, q); err != nil {
		return false, err
	}

	id, err := b.take(ctx, q)
	if errors.Is(err, redis.Nil) && wait > 0 {
		err = b.client.BRPop(ctx, wait, b.key(q, "notify")).Err()
		if err == nil || errors.Is(err, redis.Nil) {
			id, err = b.take(ctx, q)
		}
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("take job: %w", err)
	}
	return true, b.run(ctx, q, id, h)
}

func (b *Broker) take(ctx context.Context, q string) (string, error) {
	keys := []string{b.key(q, "waiting"), b.key(q, "active"), b.key(q, "started")}
	return takeScript.Run(ctx, b.client, keys, b.now().UnixMilli()).Text()
}

func (b *Broker) run(ctx context.Context, q, id string, h queue.HandleFunc) error {
	raw, err := b.client.HGet(ctx, b.key(q, "jobs"), id).Result()
	if errors.Is(err, redis.Nil) {
		b.logger.Warn("redis job data missing", logx.String("queue", q), logx.String("job_id", id))
		_, err = b.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.LRem(ctx, b.key(q, "active"), 1, id)
			p.ZRem(ctx, b.key(q, "started"), id)
			return nil
		})
		return err
	}
	if err != nil {
		return b.release(ctx, q, id, fmt.Errorf("load job %s: %w", id, err))
	}

	var job queue.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		b.logger.Error("redis bad job payload", logx.String("queue", q), logx.String("job_id", id), logx.Err(err))
		return b.finish(ctx, q, queue.Job{ID: id, Queue: q, Attempt: b.policy.MaxAttempts}, queue.Permanent(err))
	}
	job.Attempt++

	if err := b.store(ctx, job); err != nil {
		return b.release(ctx, q, id, err)
	}

	herr := h(ctx, job)

	// the job outcome must be recorded even when ctx was cancelled mid-handler
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()
	return b.finish(fctx, q, job, herr)
}

// release puts a taken job back in front of waiting when it could not be
// handed to the handler. If that fails too, RequeueStalled picks it up later.
func (b *Broker) release(ctx context.Context, q, id string, cause error) error {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()
	_, err := b.client.TxPipelined(rctx, func(p redis.Pipeliner) error {
		p.LRem(rctx, b.key(q, "active"), 1, id)
		p.ZRem(rctx, b.key(q, "started"), id)
		p.RPush(rctx, b.key(q, "waiting"), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w (release: %w)", cause, err)
	}
	return cause
}

func (b *Broker) store(ctx context.Context, job queue.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := b.client.HSet(ctx, b.key(job.Queue, "jobs"), job.ID, data).Err(); err != nil {
		return fmt.Errorf("store job %s: %w", job.ID, err)
	}
	return nil
}

func (b *Broker) finish(ctx context.Context, q string, job queue.Job, herr error) error {
	active, started := b.key(q, "active"), b.key(q, "started")

	if herr == nil {
		_, err := b.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.LRem(ctx, active, 1, job.ID)
			p.ZRem(ctx, started, job.ID)
			p.HDel(ctx, b.key(q, "jobs"), job.ID)
			return nil
		})
		return err
	}

	job.LastError = herr.Error()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	if !b.policy.ShouldRetry(job.Attempt, herr) {
		_, err = b.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, b.key(q, "jobs"), job.ID, data)
			p.LRem(ctx, active, 1, job.ID)
			p.ZRem(ctx, started, job.ID)
			p.LPush(ctx, b.key(q, "failed"), job.ID)
			return nil
		})
		return err
	}

	next := b.now().Add(b.policy.Delay(job.Attempt))
	_, err = b.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, b.key(q, "jobs"), job.ID, data)
		p.LRem(ctx, active, 1, job.ID)
		p.ZRem(ctx, started, job.ID)
		p.ZAdd(ctx, b.key(q, "delayed"), redis.Z{Score: b.ms(next), Member: job.ID})
		return nil
	})
	return err
}

// promoteDelayed moves due jobs back to waiting. ZRem decides which consumer
// promotes a given id.
func (b *Broker) promoteDelayed(ctx context.Context, q string) (int, error) {
	delayed := b.key(q, "delayed")
	ids, err := b.client.ZRangeByScore(ctx, delayed, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(b.now().UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("read delayed jobs: %w", err)
	}

	moved := 0
	for _, id := range ids {
		n, err := b.client.ZRem(ctx, delayed, id).Result()
		if err != nil {
			return moved, fmt.Errorf("claim delayed job %s: %w", id, err)
		}
		if n == 0 {
			continue
		}
		if err := b.client.LPush(ctx, b.key(q, "waiting"), id).Err(); err != nil {
			return moved, fmt.Errorf("promote job %s: %w", id, err)
		}
		moved++
	}
	return moved, nil
}

// RequeueStalled returns jobs that have been active longer than timeout to the
// front of the waiting list, together with active ids that never got a start
// time.
func (b *Broker) RequeueStalled(ctx context.Context, q string, timeout time.Duration) (int, error) {
	keys := []string{b.key(q, "active"), b.key(q, "started"), b.key(q, "waiting")}
	n, err := requeueScript.Run(ctx, b.client, keys, b.now().Add(-timeout).UnixMilli()).Int()
	if err != nil {
		return 0, fmt.Errorf("requeue stalled jobs: %w", err)
	}
	return n, nil
}

// Failed returns the jobs of q that exhausted their attempts, newest first.
func (b *Broker) Failed(ctx context.Context, q string) ([]queue.Job, error) {
	ids, err := b.client.LRange(ctx, b.key(q, "failed"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read failed jobs: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	raws, err := b.client.HMGet(ctx, b.key(q, "jobs"), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load failed jobs: %w", err)
	}
	out := make([]queue.Job, 0, len(raws))
	for _, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		var job queue.Job
		if err := json.Unmarshal([]byte(s), &job); err != nil {
			continue
		}
		out = append(out, job)
	}
	return out, nil
}

// Ping checks the connection.
func (b *Broker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Broker) Close() error {
	return b.client.Close()
}
