package readfiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIdentity(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		kind     MetricType
		instance string
		typeInst string
	}{
		{"nested file", "/data/host1/cpu", Derive, "host1", "cpu"},
		{"gauge kind", "/data/host1/mem", Gauge, "host1", "mem"},
		{"file at root", "/cpu", Derive, "cpu", "cpu"},
		{"relative without directory", "cpu", Gauge, "cpu", "cpu"},
		{"relative with directory", "stats/load", Gauge, "stats", "load"},
		{"repeated separators", "/var//run///x", Derive, "run", "x"},
		{"trailing separator", "/data/host1/", Gauge, "host1", ""},
		{"empty path", "", Gauge, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := DeriveIdentity(tt.path, tt.kind, "myplugin")
			assert.Equal(t, "myplugin", id.Plugin)
			assert.Equal(t, tt.kind, id.Type)
			assert.Equal(t, tt.instance, id.PluginInstance)
			assert.Equal(t, tt.typeInst, id.TypeInstance)
		})
	}
}

func TestDeriveIdentityTypeInstanceIsLastComponent(t *testing.T) {
	for _, p := range []string{"/a/b/c", "a", "/", "//x", "/a/b/c.d", "./rel/v"} {
		id := DeriveIdentity(p, Derive, "p")
		assert.Equal(t, baseName(p), id.TypeInstance, p)
		if baseName(dirName(p)) == "" {
			assert.Equal(t, id.TypeInstance, id.PluginInstance, p)
		}
	}
}

func TestMetricIdentityString(t *testing.T) {
	id := DeriveIdentity("/data/host1/cpu", Derive, "myplugin")
	assert.Equal(t, "myplugin-host1/derive-cpu", id.String())
}
