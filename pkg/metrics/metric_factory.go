package metrics

// MetricFactory 指标工厂，统一创建并注册 counter/gauge/histogram
type MetricFactory struct {
	reg Registers
}

// NewMetricFactory 创建指标工厂
func NewMetricFactory(reg Registers) *MetricFactory {
	return &MetricFactory{reg: reg}
}

// Registry 返回底层注册器（用于注册自定义 Collector，例如样本导出 writer）
func (m *MetricFactory) Registry() Registers {
	return m.reg
}
