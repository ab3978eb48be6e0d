package agent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/readfiles-agent/cmd/server"
	"github.com/readfiles-agent/pkg/config"
	"github.com/readfiles-agent/pkg/logger"
	"github.com/readfiles-agent/pkg/registers"
	"github.com/readfiles-agent/pkg/signal"
	"github.com/readfiles-agent/pkg/util"
)

const enableProcess = true

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the agent: schedule plugin reads and serve /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfigWithCli(cmd)
			if err != nil {
				return fmt.Errorf("%w (check the config path or pass -c)", err)
			}
			return runAgent(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

// runAgent 启动调度器与 HTTP 服务，阻塞到收到退出信号或 HTTP 服务失败
func runAgent(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Agent.Banner {
		util.PrintBanner(out, "readfiles", "ColorCyan")
	}

	ctx, stop := signal.NotifyContext(ctx)
	defer stop()

	registry, agent, err := registers.InitAgent(ctx, enableProcess, cfg)
	if err != nil {
		return fmt.Errorf("init agent: %w", err)
	}
	httpServer := server.NewHTTPServer(cfg.Server, logger.Named("http"), registry)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpServer.ListenAndServe)
	g.Go(func() error {
		// 关闭顺序：HTTP服务 → 调度器与插件
		return signal.WaitForShutdown(gctx, logger.L(), cfg.Agent.ShutdownTimeout, func(sctx context.Context) error {
			return errors.Join(httpServer.Shutdown(sctx), agent.Shutdown(sctx))
		})
	})

	logger.Info("agent running, waiting for SIGINT/SIGTERM", zap.String("listen_addr", cfg.Server.Addr))
	return g.Wait()
}
