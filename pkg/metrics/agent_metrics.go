package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewAgentSweepsTotal 采集周期触发次数
// 标签 plugin: 插件名称（配置中的 PluginName）
func (m *MetricFactory) NewAgentSweepsTotal() *prometheus.CounterVec {
	return promauto.With(m.reg).NewCounterVec(prometheus.CounterOpts{
		Name: "agent_sweeps_total",
		Help: "Total number of collection sweeps started",
	}, []string{"plugin"})
}

// NewAgentSamplesDispatchedTotal 成功分发的样本数
// 标签 type: derive/gauge
func (m *MetricFactory) NewAgentSamplesDispatchedTotal() *prometheus.CounterVec {
	return promauto.With(m.reg).NewCounterVec(prometheus.CounterOpts{
		Name: "agent_samples_dispatched_total",
		Help: "Total samples handed to the dispatch sink",
	}, []string{"plugin", "type"})
}

// NewAgentCollectErrorsTotal 采集错误累计次数
// 标签 reason: open_failed / empty_read / parse_failed / dispatch_failed
func (m *MetricFactory) NewAgentCollectErrorsTotal() *prometheus.CounterVec {
	return promauto.With(m.reg).NewCounterVec(prometheus.CounterOpts{
		Name: "agent_collect_errors_total",
		Help: "Total collection errors",
	}, []string{"plugin", "reason"})
}

// NewAgentWriteErrorsTotal 下游 writer 写入失败次数
func (m *MetricFactory) NewAgentWriteErrorsTotal() *prometheus.CounterVec {
	return promauto.With(m.reg).NewCounterVec(prometheus.CounterOpts{
		Name: "agent_write_errors_total",
		Help: "Total errors returned by sample writers",
	}, []string{"writer"})
}

// NewAgentWriteDurationSeconds 单个样本写入各 writer 的耗时
// 分桶 0.001s ~ 0.512s
func (m *MetricFactory) NewAgentWriteDurationSeconds() *prometheus.HistogramVec {
	return promauto.With(m.reg).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agent_write_duration_seconds",
		Help:    "Duration of a single sample write per writer",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
	}, []string{"writer"})
}
