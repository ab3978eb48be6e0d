package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/readfiles-agent/pkg/readfiles"
)

// ReadfilesStats 将插件运行事件导出为 Prometheus 指标，实现 readfiles.Stats
type ReadfilesStats struct {
	sweeps     *prometheus.CounterVec
	dispatched *prometheus.CounterVec
	errors     *prometheus.CounterVec
}

var _ readfiles.Stats = (*ReadfilesStats)(nil)

// NewReadfilesStats 创建并注册插件指标
func NewReadfilesStats(m *MetricFactory) *ReadfilesStats {
	return &ReadfilesStats{
		sweeps:     m.NewAgentSweepsTotal(),
		dispatched: m.NewAgentSamplesDispatchedTotal(),
		errors:     m.NewAgentCollectErrorsTotal(),
	}
}

func (s *ReadfilesStats) SweepStarted(plugin string) {
	s.sweeps.WithLabelValues(plugin).Inc()
}

func (s *ReadfilesStats) SampleDispatched(plugin string, kind readfiles.MetricType) {
	s.dispatched.WithLabelValues(plugin, string(kind)).Inc()
}

func (s *ReadfilesStats) ReadFailed(plugin string, kind readfiles.ReadErrorKind) {
	s.errors.WithLabelValues(plugin, kind.String()).Inc()
}

func (s *ReadfilesStats) DispatchFailed(plugin string) {
	s.errors.WithLabelValues(plugin, "dispatch_failed").Inc()
}
