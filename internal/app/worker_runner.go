package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"parcel-delivery/internal/logx"
	"parcel-delivery/internal/queue"
	"parcel-delivery/internal/transport/redisq"
)

// WorkerRunner runs the notification worker process.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun consumes jobs until the container context is cancelled.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	logger logx.Logger,
	mgr *queue.Manager,
	broker queue.Broker,
	stall *redisq.StallChecker,
) error {
	if mgr == nil {
		return fmt.Errorf("queue manager is nil: worker container misconfigured")
	}
	defer closeResources(nil, broker, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mgr.Run(gctx) })
	if stall != nil {
		g.Go(func() error { return stall.Run(gctx) })
	}

	logger.Info("parcel-delivery worker started", logx.Any("queues", mgr.Queues()))
	return g.Wait()
}
