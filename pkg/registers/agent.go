package registers

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/readfiles-agent/pkg/config"
	"github.com/readfiles-agent/pkg/dispatch"
	"github.com/readfiles-agent/pkg/logger"
	"github.com/readfiles-agent/pkg/metrics"
)

// InitAgent 组装并启动宿主
// promReg  Prometheus 注册器，供 /metrics 暴露样本与自身指标
// agent    调度器，后台按间隔触发插件读回调
// error    writer/插件初始化失败时返回
func InitAgent(ctx context.Context, enableProcess bool, cfg *config.Config) (*prometheus.Registry, Agent, error) {
	// 1. Prometheus 注册器（不注册 Go 运行时指标，进程指标可选）
	promReg := prometheus.NewRegistry()
	if enableProcess {
		promReg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}
	factory := metrics.NewMetricFactory(metrics.NewPromRegistry(promReg))

	// 2. 下游 writer 与分发器
	writers := BuildWriters(cfg.Writers, factory)
	dispatcher := dispatch.NewDispatcher(logger.Named("dispatch"), writers,
		dispatch.WithWriteMetrics(factory.NewAgentWriteErrorsTotal(), factory.NewAgentWriteDurationSeconds()))

	// 3. 调度器
	agent := NewScheduler(ResolveHostname(cfg.Agent.Hostname), logger.Named("scheduler"))

	// 4. 插件（配置阶段即注册读回调）
	if _, err := RegisterPlugins(agent, cfg, dispatcher, factory); err != nil {
		logger.Error("failed to register plugins", zap.Error(err))
		_ = agent.Shutdown(ctx)
		return nil, nil, err
	}

	agent.Start(ctx)
	logger.Info("agent started",
		zap.String("hostname", agent.Hostname()),
		zap.Strings("writers", dispatcher.Writers()),
	)
	return promReg, agent, nil
}

// BuildWriters 按配置创建已启用的 writer，prometheus writer 注册到 factory 的注册器
func BuildWriters(cfg config.WritersConfig, factory *metrics.MetricFactory) []dispatch.Writer {
	var writers []dispatch.Writer
	if cfg.Prometheus.Enable {
		w := dispatch.NewPrometheusWriter()
		factory.Registry().MustRegister(w)
		writers = append(writers, w)
	}
	if cfg.Log.Enable {
		writers = append(writers, dispatch.NewLogWriter(logger.Named("sample")))
	}
	if cfg.HTTP.Enable {
		writers = append(writers, dispatch.NewHTTPWriter(cfg.HTTP.URL, cfg.HTTP.Timeout))
	}
	return writers
}
