// Package readfiles 周期性读取文件首行数值并以 derive/gauge 指标分发的采集插件。
package readfiles

import "strings"

// MetricType 指标类型，取值与 types.db 中的数据源类型名一致
type MetricType string

const (
	Derive MetricType = "derive" // 单调递增计数，由下游根据相邻两次读数计算速率
	Gauge  MetricType = "gauge"  // 采样时刻的瞬时值
)

// MetricIdentity 指标四段式标识：plugin / plugin_instance / type / type_instance
type MetricIdentity struct {
	Plugin         string     `json:"plugin"`
	PluginInstance string     `json:"plugin_instance"`
	Type           MetricType `json:"type"`
	TypeInstance   string     `json:"type_instance"`
}

// DeriveIdentity 根据文件路径与指标类型计算指标标识
// type_instance 取文件名；plugin_instance 取父目录名，父目录名为空（位于根目录或无目录部分）时退化为文件名。
// 对任意字符串都有定义，不会失败。
func DeriveIdentity(path string, kind MetricType, pluginName string) MetricIdentity {
	typeInstance := baseName(path)
	inst := baseName(dirName(path))
	if inst == "" {
		inst = typeInstance
	}
	return MetricIdentity{
		Plugin:         pluginName,
		PluginInstance: inst,
		Type:           kind,
		TypeInstance:   typeInstance,
	}
}

// String 以 plugin-instance/type-type_instance 形式输出，便于日志阅读
func (id MetricIdentity) String() string {
	return id.Plugin + "-" + id.PluginInstance + "/" + string(id.Type) + "-" + id.TypeInstance
}

// baseName 返回最后一个 '/' 之后的部分；以 '/' 结尾的路径返回空串（与 filepath.Base 不同）
func baseName(p string) string {
	return p[strings.LastIndexByte(p, '/')+1:]
}

// dirName 返回最后一个 '/' 之前的部分，并去掉尾部多余的 '/'（全部由 '/' 组成时原样保留）
func dirName(p string) string {
	head := p[:strings.LastIndexByte(p, '/')+1]
	if strings.Trim(head, "/") != "" {
		head = strings.TrimRight(head, "/")
	}
	return head
}
