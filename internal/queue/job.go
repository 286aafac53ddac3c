package queue

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"
)

// Job is one unit of work stored by a broker.
type Job struct {
	ID         string          `json:"id"`
	Queue      string          `json:"queue"`
	Data       json.RawMessage `json:"data"`
	Attempt    int             `json:"attempt"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	LastError  string          `json:"last_error,omitempty"`
}

// HandleFunc processes a job delivered by a broker. A non-nil error fails the attempt.
type HandleFunc func(ctx context.Context, job Job) error

// Handler is registered with a Manager under its Key.
type Handler interface {
	Key() string
	Handle(ctx context.Context, job Job) error
}

// Broker durably stores jobs and delivers them to consumers.
// Retrying failed attempts is the broker's responsibility.
type Broker interface {
	Publish(ctx context.Context, job Job) error
	// Consume blocks, feeding jobs of queue to h, until ctx is done.
	Consume(ctx context.Context, queue string, h HandleFunc) error
	Close() error
}

var (
	// ErrUnknownQueue is returned when no handler is registered for a key.
	ErrUnknownQueue = errors.New("unknown queue")
	// ErrBrokerUnavailable marks publish failures caused by an unreachable broker.
	ErrBrokerUnavailable = errors.New("broker unavailable")
	// ErrDeferredFull is returned when a publish fails and the deferred buffer is full.
	ErrDeferredFull = errors.New("deferred job buffer full")
)

// PermanentError is a job failure that must not be retried.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so brokers skip remaining attempts.
func Permanent(err error) error {
	return PermanentError{Err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var pe PermanentError
	return errors.As(err, &pe)
}

// isTransient reports whether a publish error is worth retrying later:
// network and DNS failures, or a broker that reported itself unavailable.
func isTransient(err error) bool {
	if errors.Is(err, ErrBrokerUnavailable) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
