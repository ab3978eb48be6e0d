// Package dispatch 样本分发：把插件产生的样本依次交给所有已启用的 writer。
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/readfiles-agent/pkg/readfiles"
)

// Writer 下游消费者，必须支持并发调用
type Writer interface {
	Name() string
	Write(ctx context.Context, s readfiles.Sample) error
}

// Dispatcher 实现 readfiles.DispatchSink
// 不缓冲、不重试：每个样本在调用方 goroutine 中同步写入各 writer，单个 writer 失败不影响其它 writer。
type Dispatcher struct {
	writers     []Writer
	log         *zap.Logger
	errorsTotal *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

var _ readfiles.DispatchSink = (*Dispatcher)(nil)

// DispatcherOption 分发器可选项
type DispatcherOption func(*Dispatcher)

// WithWriteMetrics 记录每个 writer 的错误数与耗时
func WithWriteMetrics(errorsTotal *prometheus.CounterVec, duration *prometheus.HistogramVec) DispatcherOption {
	return func(d *Dispatcher) {
		d.errorsTotal = errorsTotal
		d.duration = duration
	}
}

// NewDispatcher 创建分发器
func NewDispatcher(log *zap.Logger, writers []Writer, opts ...DispatcherOption) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{writers: writers, log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Writers 已启用的 writer 名称
func (d *Dispatcher) Writers() []string {
	names := make([]string, 0, len(d.writers))
	for _, w := range d.writers {
		names = append(names, w.Name())
	}
	return names
}

// Dispatch 将样本写入所有 writer，返回合并后的错误
func (d *Dispatcher) Dispatch(ctx context.Context, s readfiles.Sample) error {
	var errs []error
	for _, w := range d.writers {
		start := time.Now()
		err := w.Write(ctx, s)
		if d.duration != nil {
			d.duration.WithLabelValues(w.Name()).Observe(time.Since(start).Seconds())
		}
		if err != nil {
			if d.errorsTotal != nil {
				d.errorsTotal.WithLabelValues(w.Name()).Inc()
			}
			d.log.Debug("writer failed", zap.String("writer", w.Name()), zap.Stringer("identity", s.Identity), zap.Error(err))
			errs = append(errs, fmt.Errorf("writer %s: %w", w.Name(), err))
		}
	}
	return errors.Join(errs...)
}
