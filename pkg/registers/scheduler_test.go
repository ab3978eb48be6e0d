package registers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/readfiles-agent/pkg/readfiles"
)

type stubPlugin struct {
	name   string
	err    error
	closed atomic.Int32
}

func (p *stubPlugin) Name() string { return p.name }

func (p *stubPlugin) Configure(host readfiles.Host, _ []readfiles.ConfigNode) error {
	return host.RegisterRead(p.name, time.Hour, func(context.Context) {})
}

func (p *stubPlugin) Close() error {
	p.closed.Add(1)
	return p.err
}

func shutdown(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestSchedulerFiresImmediately(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewScheduler("node-a", nil)
	var calls atomic.Int32
	require.NoError(t, s.RegisterRead("readfiles", time.Hour, func(context.Context) {
		calls.Add(1)
	}))
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	shutdown(t, s)
}

func TestSchedulerFiresOnInterval(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewScheduler("node-a", nil)
	var calls atomic.Int32
	require.NoError(t, s.RegisterRead("readfiles", 20*time.Millisecond, func(context.Context) {
		calls.Add(1)
	}))
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	shutdown(t, s)

	stopped := calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}

func TestSchedulerSlowCallbackDoesNotDelayTicks(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewScheduler("node-a", nil)
	release := make(chan struct{})
	var calls atomic.Int32
	require.NoError(t, s.RegisterRead("slow", 10*time.Millisecond, func(ctx context.Context) {
		calls.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
	}))
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	close(release)
	shutdown(t, s)
}

func TestSchedulerRecoversCallbackPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewScheduler("node-a", nil)
	var calls atomic.Int32
	require.NoError(t, s.RegisterRead("boom", 10*time.Millisecond, func(context.Context) {
		calls.Add(1)
		panic("boom")
	}))
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	shutdown(t, s)
}

func TestSchedulerRegisterAfterStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewScheduler("node-a", nil)
	s.Start(context.Background())

	fired := make(chan struct{})
	var once sync.Once
	require.NoError(t, s.RegisterRead("late", time.Hour, func(context.Context) {
		once.Do(func() { close(fired) })
	}))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback registered after start did not fire")
	}
	shutdown(t, s)
}

func TestSchedulerRegisterReadValidation(t *testing.T) {
	s := NewScheduler("node-a", nil)
	noop := func(context.Context) {}

	require.NoError(t, s.RegisterRead("readfiles", time.Second, noop))
	assert.Error(t, s.RegisterRead("readfiles", time.Second, noop))
	assert.Error(t, s.RegisterRead("zero", 0, noop))
	assert.Error(t, s.RegisterRead("nil", time.Second, nil))
	assert.Equal(t, "node-a", s.Hostname())
}

func TestSchedulerStopsOnParentContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewScheduler("node-a", nil)
	var calls atomic.Int32
	require.NoError(t, s.RegisterRead("readfiles", 5*time.Millisecond, func(context.Context) { calls.Add(1) }))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()
	shutdown(t, s)
}

func TestSchedulerShutdownClosesPlugins(t *testing.T) {
	s := NewScheduler("node-a", nil)
	ok := &stubPlugin{name: "ok"}
	bad := &stubPlugin{name: "bad", err: errors.New("stuck")}
	require.NoError(t, ok.Configure(s, nil))
	require.NoError(t, bad.Configure(s, nil))
	s.AddPlugin(ok)
	s.AddPlugin(bad)
	s.Start(context.Background())

	err := s.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close bad: stuck")
	assert.EqualValues(t, 1, ok.closed.Load())
	assert.EqualValues(t, 1, bad.closed.Load())
}

func TestSchedulerShutdownTimeout(t *testing.T) {
	s := NewScheduler("node-a", nil)
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, s.RegisterRead("stuck", time.Hour, func(context.Context) {
		close(started)
		<-release
	}))
	s.Start(context.Background())
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestResolveHostname(t *testing.T) {
	assert.Equal(t, "configured", ResolveHostname("configured"))
	assert.NotEmpty(t, ResolveHostname(""))
}
