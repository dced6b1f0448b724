package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, s)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

type blockingService struct {
	name    string
	rec     *recorder
	started atomic.Bool
	done    chan struct{}
	once    sync.Once
}

func newBlocking(name string, rec *recorder) *blockingService {
	return &blockingService{name: name, rec: rec, done: make(chan struct{})}
}

func (b *blockingService) Start(ctx context.Context) error {
	b.started.Store(true)
	select {
	case <-ctx.Done():
	case <-b.done:
	}
	return nil
}

func (b *blockingService) Stop(context.Context) error {
	b.rec.add("stop " + b.name)
	b.once.Do(func() { close(b.done) })
	return nil
}

func TestLifecycleStopsInReverseOrder(t *testing.T) {
	rec := &recorder{}
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	svc1, svc2 := newBlocking("scheduler", rec), newBlocking("health", rec)
	lc.Add("scheduler", svc1)
	lc.Add("health", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool { return svc1.started.Load() && svc2.started.Load() }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.Equal(t, []string{"stop health", "stop scheduler"}, rec.list())
}

func TestLifecycleReturnsFirstServiceFailure(t *testing.T) {
	rec := &recorder{}
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	healthy := newBlocking("healthy", rec)
	boom := errors.New("database unreachable")
	lc.Add("healthy", healthy)
	lc.Add("broken", &FuncService{StartFn: func(context.Context) error { return boom }})

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service broken")
	assert.Equal(t, []string{"stop healthy"}, rec.list())
}

func TestLifecycleReportsStopErrors(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), 50*time.Millisecond)
	lc.Add("stuck", &FuncService{
		StartFn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
		StopFn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := lc.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFuncServiceNilStop(t *testing.T) {
	started := false
	svc := &FuncService{StartFn: func(context.Context) error {
		started = true
		return nil
	}}
	assert.NoError(t, svc.Start(context.Background()))
	assert.True(t, started)
	assert.NoError(t, svc.Stop(context.Background()))
}

func TestNewLifecycleRejectsZeroTimeout(t *testing.T) {
	assert.Panics(t, func() { NewLifecycle(zaptest.NewLogger(t), 0) })
}
