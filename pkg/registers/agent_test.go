package registers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readfiles-agent/pkg/config"
	"github.com/readfiles-agent/pkg/dispatch"
	"github.com/readfiles-agent/pkg/metrics"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name && len(f.GetMetric()) > 0 {
			return f.GetMetric()[0]
		}
	}
	return nil
}

func TestInitAgentEndToEnd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "host1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	mem := filepath.Join(dir, "mem")
	require.NoError(t, os.WriteFile(mem, []byte("2048\n"), 0o644))

	cfg := config.NewDefaultConfig()
	cfg.Agent.Hostname = "node-a"
	cfg.Plugins = map[string]map[string]any{
		"readfiles": {
			"gaugemetricfiles": []any{mem, filepath.Join(dir, "missing")},
			"interval":         1,
		},
	}

	reg, agent, err := InitAgent(context.Background(), false, cfg)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, agent.Shutdown(ctx))
	}()
	assert.Equal(t, "node-a", agent.Hostname())

	var m *dto.Metric
	require.Eventually(t, func() bool {
		m = findMetric(t, reg, "readfiles_gauge")
		return m != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2048.0, m.GetGauge().GetValue())

	labels := map[string]string{}
	for _, l := range m.GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	assert.Equal(t, map[string]string{
		"host":            "node-a",
		"plugin":          "readfiles",
		"plugin_instance": "host1",
		"type_instance":   "mem",
	}, labels)

	assert.Eventually(t, func() bool {
		return findMetric(t, reg, "agent_collect_errors_total") != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestInitAgentWithoutPlugins(t *testing.T) {
	cfg := config.NewDefaultConfig()
	_, _, err := InitAgent(context.Background(), false, cfg)
	assert.Error(t, err)
}

func TestBuildWriters(t *testing.T) {
	reg := prometheus.NewRegistry()
	factory := metrics.NewMetricFactory(metrics.NewPromRegistry(reg))

	writers := BuildWriters(config.WritersConfig{
		Prometheus: config.PrometheusWriterConfig{Enable: true},
		Log:        config.LogWriterConfig{Enable: true},
		HTTP:       config.HTTPWriterConfig{Enable: true, URL: "http://127.0.0.1:1/push"},
	}, factory)

	names := dispatch.NewDispatcher(nil, writers).Writers()
	assert.Equal(t, []string{"prometheus", "log", "http"}, names)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Zero(t, n)
}
