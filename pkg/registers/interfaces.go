package registers

import (
	"context"

	"github.com/readfiles-agent/pkg/readfiles"
)

// Agent 宿主接口（封装插件读回调的定时调度与生命周期）
// 新增插件只需实现 Plugin 接口，并在 modules 表中登记
type Agent interface {
	readfiles.Host
	AddPlugin(p Plugin)                 // 登记插件，关闭时统一 Close
	Start(ctx context.Context)          // 启动所有读回调的定时循环
	Shutdown(ctx context.Context) error // 优雅停止
}

// Plugin 插件核心接口
type Plugin interface {
	Name() string                                                      // 插件名称（唯一标识）
	Configure(host readfiles.Host, nodes []readfiles.ConfigNode) error // 应用配置并注册读回调
	Close() error                                                      // 关闭（释放资源）
}
