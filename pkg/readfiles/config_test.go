package readfiles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, warnings := ParseConfig(nil)
	assert.Empty(t, warnings)
	assert.Equal(t, DefaultSweepConfig(), cfg)
	assert.Equal(t, 60*time.Second, cfg.Interval())
	assert.True(t, cfg.Verbose)
	assert.Equal(t, DefaultPluginName, cfg.PluginName)
}

func TestParseConfig(t *testing.T) {
	cfg, warnings := ParseConfig([]ConfigNode{
		{Key: "DeriveMetricFiles", Values: []string{"/data/host1/cpu", "/data/host2/cpu"}},
		{Key: "gaugemetricfiles", Values: []string{"/data/host1/mem"}},
		{Key: "Interval", Values: []string{"10"}},
		{Key: "PluginName", Values: []string{"myplugin"}},
		{Key: "Verbose", Values: []string{"False"}},
		{Key: "Color", Values: []string{"blue"}},
	})

	require.Len(t, warnings, 1)
	assert.Equal(t, "Color", warnings[0].Key)
	assert.Equal(t, "Color: unknown config key", warnings[0].String())

	assert.Equal(t, []string{"/data/host1/cpu", "/data/host2/cpu"}, cfg.DeriveFiles)
	assert.Equal(t, []string{"/data/host1/mem"}, cfg.GaugeFiles)
	assert.Equal(t, 10.0, cfg.IntervalSeconds)
	assert.Equal(t, 10*time.Second, cfg.Interval())
	assert.Equal(t, "myplugin", cfg.PluginName)
	assert.False(t, cfg.Verbose)
}

func TestParseConfigVerbose(t *testing.T) {
	for val, want := range map[string]bool{"True": true, "true": true, "TRUE": false, "yes": false, "1": false} {
		cfg, _ := ParseConfig([]ConfigNode{{Key: "Verbose", Values: []string{val}}})
		assert.Equal(t, want, cfg.Verbose, val)
	}
}

func TestParseConfigInvalidValues(t *testing.T) {
	cfg, warnings := ParseConfig([]ConfigNode{
		{Key: "Interval", Values: []string{"soon"}},
		{Key: "PluginName"},
	})
	require.Len(t, warnings, 2)
	assert.Equal(t, "Interval", warnings[0].Key)
	assert.Equal(t, "missing value", warnings[1].Reason)
	assert.Equal(t, DefaultInterval, cfg.IntervalSeconds)
	assert.Equal(t, DefaultPluginName, cfg.PluginName)

	for _, bad := range []string{"-5", "0", "nan", "NaN", "inf", "-Inf", "1e-12", "1e300"} {
		cfg, warnings = ParseConfig([]ConfigNode{{Key: "Interval", Values: []string{bad}}})
		require.Len(t, warnings, 1, bad)
		assert.Contains(t, warnings[0].Reason, "keeping 60", bad)
		assert.Equal(t, DefaultInterval, cfg.IntervalSeconds, bad)
		assert.Equal(t, 60*time.Second, cfg.Interval(), bad)
	}

	cfg, warnings = ParseConfig([]ConfigNode{{Key: "Interval", Values: []string{"0.5"}}})
	assert.Empty(t, warnings)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval())
}

func TestNodesFromMap(t *testing.T) {
	nodes := NodesFromMap(map[string]any{
		"pluginname":        "myplugin",
		"derivemetricfiles": []any{"/a/b", "/c/d"},
		"interval":          2.5,
		"verbose":           true,
		"gaugemetricfiles":  []string{"/e/f"},
		"empty":             nil,
	})

	require.Equal(t, []ConfigNode{
		{Key: "derivemetricfiles", Values: []string{"/a/b", "/c/d"}},
		{Key: "empty"},
		{Key: "gaugemetricfiles", Values: []string{"/e/f"}},
		{Key: "interval", Values: []string{"2.5"}},
		{Key: "pluginname", Values: []string{"myplugin"}},
		{Key: "verbose", Values: []string{"true"}},
	}, nodes)

	cfg, warnings := ParseConfig(nodes)
	require.Len(t, warnings, 1)
	assert.Equal(t, 2500*time.Millisecond, cfg.Interval())
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []string{"/e/f"}, cfg.GaugeFiles)
}
