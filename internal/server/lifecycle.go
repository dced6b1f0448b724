// Package server runs the daemon's long-lived services: it starts them in
// registration order, waits for a signal or a failure, then stops them in
// reverse order within a bounded shutdown window.
package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component.
type Service interface {
	// Start blocks until ctx is cancelled, Stop is called, or the service fails.
	Start(ctx context.Context) error
	// Stop asks the service to finish and waits for it, bounded by ctx.
	Stop(ctx context.Context) error
}

// FuncService adapts a pair of functions into a Service. A nil StopFn is a no-op.
type FuncService struct {
	StartFn func(ctx context.Context) error
	StopFn  func(ctx context.Context) error
}

// Start calls StartFn.
func (f *FuncService) Start(ctx context.Context) error { return f.StartFn(ctx) }

// Stop calls StopFn when set.
func (f *FuncService) Stop(ctx context.Context) error {
	if f.StopFn == nil {
		return nil
	}
	return f.StopFn(ctx)
}

type namedService struct {
	name    string
	service Service
}

// Lifecycle owns the registered services.
type Lifecycle struct {
	logger          *zap.Logger
	shutdownTimeout time.Duration

	mu       sync.Mutex
	services []namedService
}

// NewLifecycle creates a Lifecycle that allows shutdownTimeout for all
// services to stop.
//
// Precondition: logger must be non-nil; shutdownTimeout must be > 0.
func NewLifecycle(logger *zap.Logger, shutdownTimeout time.Duration) *Lifecycle {
	if shutdownTimeout <= 0 {
		panic("server.NewLifecycle: shutdownTimeout must be > 0")
	}
	return &Lifecycle{logger: logger, shutdownTimeout: shutdownTimeout}
}

// Add registers a named service. Services start in the order added.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until SIGINT/SIGTERM, ctx
// cancellation, or the first service failure.
//
// Postcondition: every service has been asked to stop. The returned error is
// the first service failure joined with any stop errors, or nil after a clean
// signal-driven shutdown.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	errCh := make(chan error, len(services))
	var wg sync.WaitGroup
	for _, ns := range services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.logger.Info("starting service", zap.String("service", ns.name))
			if err := ns.service.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Error("service failed", zap.String("service", ns.name), zap.Error(err))
				errCh <- fmt.Errorf("service %s: %w", ns.name, err)
				cancel()
			}
		}()
	}
	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	<-ctx.Done()
	l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))

	stopErr := l.shutdown(services)
	wg.Wait()
	close(errCh)

	var runErr error
	for err := range errCh {
		runErr = errors.Join(runErr, err)
	}
	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return errors.Join(runErr, stopErr)
}

func (l *Lifecycle) shutdown(services []namedService) error {
	ctx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer cancel()

	var errs error
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		if err := ns.service.Stop(ctx); err != nil {
			l.logger.Warn("service did not stop cleanly", zap.String("service", ns.name), zap.Error(err))
			errs = errors.Join(errs, fmt.Errorf("stopping %s: %w", ns.name, err))
			continue
		}
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	return errs
}
