package readfiles

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

// recordingSink 记录所有分发的样本
type recordingSink struct {
	mu      sync.Mutex
	samples []Sample
	err     error
	panics  bool
}

func (r *recordingSink) Dispatch(_ context.Context, s Sample) error {
	if r.panics {
		panic("sink exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.samples = append(r.samples, s)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

func (r *recordingSink) all() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sample(nil), r.samples...)
}

// fakeHost 记录 RegisterRead 调用，不启动定时器
type fakeHost struct {
	mu        sync.Mutex
	hostname  string
	names     []string
	intervals []time.Duration
	callbacks []ReadCallback
	err       error
}

func (h *fakeHost) RegisterRead(name string, interval time.Duration, cb ReadCallback) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.names = append(h.names, name)
	h.intervals = append(h.intervals, interval)
	h.callbacks = append(h.callbacks, cb)
	return nil
}

func (h *fakeHost) Hostname() string { return h.hostname }

func (h *fakeHost) registered() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.callbacks)
}

// gatedFs 打开指定路径前阻塞，直到 release 被关闭
type gatedFs struct {
	afero.Fs
	gated   string
	release chan struct{}
}

func (g *gatedFs) Open(name string) (afero.File, error) {
	if name == g.gated {
		<-g.release
	}
	return g.Fs.Open(name)
}

// countingFs 统计文件打开与关闭次数
type countingFs struct {
	afero.Fs
	mu            sync.Mutex
	opens, closes int
}

func (c *countingFs) Open(name string) (afero.File, error) {
	f, err := c.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.opens++
	c.mu.Unlock()
	return &countingFile{File: f, owner: c}, nil
}

func (c *countingFs) opened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens
}

func (c *countingFs) closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

type countingFile struct {
	afero.File
	owner *countingFs
}

func (f *countingFile) Close() error {
	f.owner.mu.Lock()
	f.owner.closes++
	f.owner.mu.Unlock()
	return f.File.Close()
}

var errSinkDown = errors.New("sink down")
