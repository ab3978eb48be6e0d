package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/readfiles-agent/pkg/readfiles"
)

// 样本在超过 staleIntervals 个采集间隔未更新后不再导出
const staleIntervals = 2

var sampleLabels = []string{"host", "plugin", "plugin_instance", "type_instance"}

// PrometheusWriter 以 Prometheus 格式导出最近一次收到的样本
// derive 导出为 untyped（readfiles_derive），derive 值允许回退或为负，不满足 counter 语义；gauge 导出为 gauge（readfiles_gauge）。
type PrometheusWriter struct {
	deriveDesc *prometheus.Desc
	gaugeDesc  *prometheus.Desc
	now        func() time.Time

	mu     sync.Mutex
	latest map[readfiles.MetricIdentity]readfiles.Sample
}

var (
	_ Writer               = (*PrometheusWriter)(nil)
	_ prometheus.Collector = (*PrometheusWriter)(nil)
)

// NewPrometheusWriter 创建 writer，需自行注册到 Registry
func NewPrometheusWriter() *PrometheusWriter {
	return &PrometheusWriter{
		deriveDesc: prometheus.NewDesc("readfiles_derive",
			"Last value read from a derive metric file", sampleLabels, nil),
		gaugeDesc: prometheus.NewDesc("readfiles_gauge",
			"Last value read from a gauge metric file", sampleLabels, nil),
		now:    time.Now,
		latest: make(map[readfiles.MetricIdentity]readfiles.Sample),
	}
}

func (w *PrometheusWriter) Name() string { return "prometheus" }

// Write 覆盖同一标识的上一个样本
func (w *PrometheusWriter) Write(_ context.Context, s readfiles.Sample) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.latest[s.Identity] = s
	return nil
}

func (w *PrometheusWriter) Describe(ch chan<- *prometheus.Desc) {
	ch <- w.deriveDesc
	ch <- w.gaugeDesc
}

// Collect 导出未过期的样本，过期样本同时被清理
func (w *PrometheusWriter) Collect(ch chan<- prometheus.Metric) {
	now := w.now()

	w.mu.Lock()
	samples := make([]readfiles.Sample, 0, len(w.latest))
	for id, s := range w.latest {
		ttl := time.Duration(s.Interval * staleIntervals * float64(time.Second))
		if !s.Time.IsZero() && now.Sub(s.Time) > ttl {
			delete(w.latest, id)
			continue
		}
		samples = append(samples, s)
	}
	w.mu.Unlock()

	for _, s := range samples {
		desc, valueType := w.gaugeDesc, prometheus.GaugeValue
		if s.Identity.Type == readfiles.Derive {
			desc, valueType = w.deriveDesc, prometheus.UntypedValue
		}
		ch <- prometheus.MustNewConstMetric(desc, valueType, s.Value,
			s.Host, s.Identity.Plugin, s.Identity.PluginInstance, s.Identity.TypeInstance)
	}
}
