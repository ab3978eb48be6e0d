package registers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/readfiles-agent/pkg/readfiles"
)

// readEntry 一个已注册的读回调
type readEntry struct {
	name     string
	interval time.Duration
	cb       readfiles.ReadCallback
}

// Scheduler 实现 Agent：每个读回调一个定时循环，注册后立即触发一次，之后按间隔触发
// 每次触发在独立 goroutine 中执行回调，回调阻塞不会推迟下一次触发。
type Scheduler struct {
	hostname string
	log      *zap.Logger

	mu      sync.Mutex
	entries map[string]*readEntry
	plugins []Plugin
	group   *errgroup.Group
	ctx     context.Context
	cancel  context.CancelFunc
	running sync.WaitGroup
}

var _ Agent = (*Scheduler)(nil)

// NewScheduler 创建调度器
func NewScheduler(hostname string, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		hostname: hostname,
		log:      log,
		entries:  make(map[string]*readEntry),
	}
}

// Hostname 样本使用的主机名
func (s *Scheduler) Hostname() string { return s.hostname }

// RegisterRead 注册读回调，调度器已启动时立即开始循环
func (s *Scheduler) RegisterRead(name string, interval time.Duration, cb readfiles.ReadCallback) error {
	if interval <= 0 {
		return fmt.Errorf("read callback %q: interval must be positive, got %s", name, interval)
	}
	if cb == nil {
		return fmt.Errorf("read callback %q: callback is nil", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("read callback %q already registered", name)
	}
	e := &readEntry{name: name, interval: interval, cb: cb}
	s.entries[name] = e
	s.log.Debug("read callback registered", zap.String("name", name), zap.Duration("interval", interval))

	if s.group != nil {
		s.startLocked(e)
	}
	return nil
}

// AddPlugin 登记插件
func (s *Scheduler) AddPlugin(p Plugin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plugins = append(s.plugins, p)
}

// Start 启动所有读回调循环（外部 ctx 取消或调用 Shutdown 时停止）
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.group != nil {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.group, s.ctx = errgroup.WithContext(s.ctx)
	for _, e := range s.entries {
		s.startLocked(e)
	}
	s.log.Info("scheduler started", zap.Int("read_callbacks", len(s.entries)))
}

func (s *Scheduler) startLocked(e *readEntry) {
	ctx := s.ctx
	s.group.Go(func() error {
		s.loop(ctx, e)
		return nil
	})
}

func (s *Scheduler) loop(ctx context.Context, e *readEntry) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	s.fire(ctx, e)
	for {
		select {
		case <-ticker.C:
			s.fire(ctx, e)
		case <-ctx.Done():
			s.log.Debug("read loop stopped", zap.String("name", e.name), zap.Error(ctx.Err()))
			return
		}
	}
}

// fire 在独立 goroutine 中执行一次回调，panic 只影响本次触发
func (s *Scheduler) fire(ctx context.Context, e *readEntry) {
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("read callback panicked", zap.String("name", e.name), zap.Any("panic", r))
			}
		}()
		e.cb(ctx)
	}()
}

// Shutdown 停止所有循环，等待正在执行的回调返回，然后关闭已登记的插件
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.log.Info("starting to shutdown scheduler")

	s.mu.Lock()
	cancel, group := s.cancel, s.group
	plugins := append([]Plugin(nil), s.plugins...)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		done := make(chan struct{})
		go func() {
			_ = group.Wait()
			s.running.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("wait for read callbacks: %w", ctx.Err())
		}
	}
	return closeAll(s.log, plugins)
}

// closeAll 逐个关闭插件，单个失败不阻断其余插件
func closeAll(log *zap.Logger, plugins []Plugin) error {
	var errs []error
	for _, p := range plugins {
		log.Debug("closing plugin", zap.String("name", p.Name()))
		if err := p.Close(); err != nil {
			log.Error("failed to close plugin", zap.String("name", p.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("close %s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
