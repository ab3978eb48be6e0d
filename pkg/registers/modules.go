package registers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/readfiles-agent/pkg/config"
	"github.com/readfiles-agent/pkg/logger"
	"github.com/readfiles-agent/pkg/metrics"
	"github.com/readfiles-agent/pkg/readfiles"
)

// Module 插件登记项：配置文件中存在 plugins.<Name> 块时启用
type Module struct {
	Name    string
	NewFunc func() Plugin
}

// modules 内置插件表，新增插件只需追加一条
func modules(sink readfiles.DispatchSink, factory *metrics.MetricFactory) []Module {
	return []Module{
		{
			Name: readfiles.DefaultPluginName,
			NewFunc: func() Plugin {
				return readfiles.New(sink,
					readfiles.WithLogger(logger.Named(readfiles.DefaultPluginName)),
					readfiles.WithStats(metrics.NewReadfilesStats(factory)),
				)
			},
		},
	}
}

// RegisterPlugins 插件注册统一入口：创建已配置的插件并把配置块交给它
// 配置块中的警告由插件自行记录；Configure 返回错误视为启动失败。
func RegisterPlugins(agent Agent, cfg *config.Config, sink readfiles.DispatchSink, factory *metrics.MetricFactory) ([]Plugin, error) {
	var registered []Plugin
	for _, m := range modules(sink, factory) {
		block, ok := cfg.Plugin(m.Name)
		if !ok {
			logger.Debug("plugin not configured", zap.String("name", m.Name))
			continue
		}
		p := m.NewFunc()
		if err := p.Configure(agent, readfiles.NodesFromMap(block)); err != nil {
			return registered, fmt.Errorf("configure plugin %s: %w", m.Name, err)
		}
		agent.AddPlugin(p)
		registered = append(registered, p)
		logger.Debug("registered plugin", zap.String("name", m.Name))
	}
	if len(registered) == 0 {
		return nil, fmt.Errorf("no plugins configured; add a plugins.%s block to the config file", readfiles.DefaultPluginName)
	}

	names := make([]string, 0, len(registered))
	for _, p := range registered {
		names = append(names, p.Name())
	}
	logger.Info("all configured plugins registered", zap.Strings("plugins", names))
	return registered, nil
}
