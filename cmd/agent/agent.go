package agent

import "github.com/spf13/cobra"

func initAgentFlags(root *cobra.Command) {
	f := root.PersistentFlags()

	f.String("agent.hostname", defaultCfg.Agent.Hostname, "样本主机名（为空时自动探测）")
	f.Bool("agent.banner", defaultCfg.Agent.Banner, "启动时打印 banner")
	f.Duration("agent.shutdown_timeout", defaultCfg.Agent.ShutdownTimeout, "优雅关闭超时时间")

	f.Bool("writers.prometheus.enable", defaultCfg.Writers.Prometheus.Enable, "通过 /metrics 导出样本")
	f.Bool("writers.log.enable", defaultCfg.Writers.Log.Enable, "每个样本写一条日志")
	f.Bool("writers.http.enable", defaultCfg.Writers.HTTP.Enable, "以 JSON POST 推送样本")
	f.String("writers.http.url", defaultCfg.Writers.HTTP.URL, "HTTP 推送地址")
	f.Duration("writers.http.timeout", defaultCfg.Writers.HTTP.Timeout, "HTTP 推送超时时间")
}
