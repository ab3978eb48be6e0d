package readfiles

import (
	"context"
	"time"
)

// Sample 一次成功读取产生的样本，构造后立即交给 DispatchSink，不做保留
type Sample struct {
	Identity MetricIdentity `json:"identity"`
	Value    float64        `json:"value"`
	// Interval 配置的采集间隔（秒），是声明值而不是实际测得的间隔
	Interval float64   `json:"interval"`
	Host     string    `json:"host"`
	Time     time.Time `json:"time"`
}

// DispatchSink 样本分发出口，负责把样本交给所有已启用的下游消费者
// 实现必须支持多个 goroutine 并发调用。
type DispatchSink interface {
	Dispatch(ctx context.Context, s Sample) error
}

// DispatchFunc 函数适配 DispatchSink
type DispatchFunc func(ctx context.Context, s Sample) error

func (f DispatchFunc) Dispatch(ctx context.Context, s Sample) error { return f(ctx, s) }

// ReadCallback 宿主定时器每个周期调用一次的回调
type ReadCallback func(ctx context.Context)

// Host 宿主提供的能力：注册周期回调、提供主机名
type Host interface {
	RegisterRead(name string, interval time.Duration, callback ReadCallback) error
	Hostname() string
}

// Stats 插件运行统计，由宿主注入（例如导出为 Prometheus 指标）
type Stats interface {
	SweepStarted(plugin string)
	SampleDispatched(plugin string, kind MetricType)
	ReadFailed(plugin string, kind ReadErrorKind)
	DispatchFailed(plugin string)
}

type nopStats struct{}

func (nopStats) SweepStarted(string)                 {}
func (nopStats) SampleDispatched(string, MetricType) {}
func (nopStats) ReadFailed(string, ReadErrorKind)    {}
func (nopStats) DispatchFailed(string)               {}
