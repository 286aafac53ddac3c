package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"parcel-delivery/internal/config"
	"parcel-delivery/internal/logx"
	"parcel-delivery/internal/queue"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the HTTP API process.
type Runner struct {
	runFn  func(*dig.Container) error
	fatalf func(string, ...interface{})
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run, fatalf: log.Fatalf}
}

// MustRun starts the HTTP server using the provided DI container
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := loggerFrom(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		r.fatalf("run error: %v", err)
	}
}

func loggerFrom(container *dig.Container) logx.Logger {
	logger := logx.Nop()
	_ = container.Invoke(func(l logx.Logger) { logger = l })
	return logger
}

type apiIn struct {
	dig.In

	Ctx     context.Context
	Config  *config.Config
	Server  *http.Server
	Pool    *pgxpool.Pool
	Logger  logx.Logger
	Manager *queue.Manager
	Broker  queue.Broker
}

func run(container *dig.Container) error {
	return container.Invoke(apiRun)
}

func apiRun(in apiIn) error {
	ctx, cancel := context.WithCancel(in.Ctx)
	defer cancel()

	serverErr := startServer(in.Server, in.Logger)

	queueDone := make(chan error, 1)
	go func() {
		// the memory broker lives in this process, so its consumers must too
		if in.Config.Queue.Driver == config.DriverMemory {
			queueDone <- in.Manager.Run(ctx)
			return
		}
		queueDone <- in.Manager.RunPublisher(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		in.Logger.Info("shutting down parcel-delivery api")
		runErr = ctx.Err()
	case err := <-serverErr:
		runErr = err
	case err := <-queueDone:
		queueDone <- err
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
		}
	}

	gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
	cancel()
	<-queueDone
	closeResources(in.Pool, in.Broker, in.Logger)
	if runErr == nil {
		runErr = in.Ctx.Err()
	}
	return runErr
}

func startServer(server *http.Server, logger logx.Logger) <-chan error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("parcel-delivery api listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen error", logx.Err(err))
			errc <- err
		}
	}()
	return errc
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(pool *pgxpool.Pool, broker queue.Broker, logger logx.Logger) {
	if broker != nil {
		if err := broker.Close(); err != nil {
			logger.Error("broker close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
