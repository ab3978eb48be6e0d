package readfiles

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
)

const (
	DefaultPluginName = "readfiles"
	DefaultInterval   = 60.0
)

// 可识别的配置项
const (
	KeyDeriveMetricFiles = "DeriveMetricFiles"
	KeyGaugeMetricFiles  = "GaugeMetricFiles"
	KeyInterval          = "Interval"
	KeyPluginName        = "PluginName"
	KeyVerbose           = "Verbose"
)

// SweepConfig 插件配置，Configure 时构造一次，之后只读
type SweepConfig struct {
	DeriveFiles     []string `yaml:"derive_files"`
	GaugeFiles      []string `yaml:"gauge_files"`
	IntervalSeconds float64  `yaml:"interval"`
	PluginName      string   `yaml:"plugin_name"`
	Verbose         bool     `yaml:"verbose"`
}

// DefaultSweepConfig 默认配置：间隔 60s，详细日志开启，文件列表为空
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		IntervalSeconds: DefaultInterval,
		PluginName:      DefaultPluginName,
		Verbose:         true,
	}
}

// Interval 采集间隔
func (c SweepConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds * float64(time.Second))
}

func (c SweepConfig) clone() SweepConfig {
	c.DeriveFiles = append([]string(nil), c.DeriveFiles...)
	c.GaugeFiles = append([]string(nil), c.GaugeFiles...)
	return c
}

// ConfigNode 配置块中的一项：键 + 一个或多个值
type ConfigNode struct {
	Key    string
	Values []string
}

// ConfigWarning 配置中被忽略的项（未知键、缺值、非法值）
type ConfigWarning struct {
	Key    string
	Reason string
}

func (w ConfigWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Key, w.Reason)
}

// NodesFromMap 将 viper 解出的配置块转换为按键排序的 ConfigNode 列表
// 列表值逐项转字符串，标量值作为单个值。
func NodesFromMap(raw map[string]any) []ConfigNode {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	nodes := make([]ConfigNode, 0, len(keys))
	for _, k := range keys {
		nodes = append(nodes, ConfigNode{Key: k, Values: toValues(raw[k])})
	}
	return nodes
}

func toValues(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any, []string:
		return cast.ToStringSlice(val)
	default:
		return []string{cast.ToString(val)}
	}
}

// validInterval 间隔必须是有限值，且换算成 time.Duration 后落在 [1ns, MaxInt64] 内
func validInterval(seconds float64) bool {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return false
	}
	ns := seconds * float64(time.Second)
	return ns >= 1 && ns < math.MaxInt64
}

// ParseConfig 解析配置项，从默认值出发逐项覆盖
// 键名大小写不敏感（viper 会把键统一转成小写）。无法识别或无法使用的项返回为 ConfigWarning，不中断解析。
func ParseConfig(nodes []ConfigNode) (SweepConfig, []ConfigWarning) {
	cfg := DefaultSweepConfig()
	var warnings []ConfigWarning

	for _, node := range nodes {
		if len(node.Values) == 0 {
			warnings = append(warnings, ConfigWarning{Key: node.Key, Reason: "missing value"})
			continue
		}
		val := node.Values[0]

		switch {
		case strings.EqualFold(node.Key, KeyDeriveMetricFiles):
			cfg.DeriveFiles = append([]string(nil), node.Values...)
		case strings.EqualFold(node.Key, KeyGaugeMetricFiles):
			cfg.GaugeFiles = append([]string(nil), node.Values...)
		case strings.EqualFold(node.Key, KeyInterval):
			interval, err := cast.ToFloat64E(strings.TrimSpace(val))
			if err != nil || !validInterval(interval) {
				warnings = append(warnings, ConfigWarning{
					Key:    node.Key,
					Reason: fmt.Sprintf("invalid interval %q, keeping %v", val, cfg.IntervalSeconds),
				})
				continue
			}
			cfg.IntervalSeconds = interval
		case strings.EqualFold(node.Key, KeyPluginName):
			cfg.PluginName = val
		case strings.EqualFold(node.Key, KeyVerbose):
			cfg.Verbose = val == "True" || val == "true"
		default:
			warnings = append(warnings, ConfigWarning{Key: node.Key, Reason: "unknown config key"})
		}
	}
	return cfg, warnings
}
